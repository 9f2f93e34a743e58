// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestMergeCompleteNotifierSendsGet(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/merge-complete", r.URL.Path)
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := services.NewHTTPMergeCompleteNotifier(server.URL+"/merge-complete", services.NewHTTPClient(time.Second))
	notifier.Notify(context.Background())

	assert.Equal(t, int32(1), calls.Load())
}

func TestMergeCompleteNotifierSwallowsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	client := services.NewHTTPClient(time.Second)

	services.NewHTTPMergeCompleteNotifier(server.URL, client).Notify(context.Background())

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	services.NewHTTPMergeCompleteNotifier(closed.URL, client).Notify(context.Background())

	services.NewHTTPMergeCompleteNotifier("://bad-url", client).Notify(context.Background())
}

func TestModerationRequesterPostsObjectKey(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/moderation/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	requester := services.NewHTTPModerationRequester(server.URL+"/api/v1/moderation/create", services.NewHTTPClient(time.Second))
	requester.RequestModeration(context.Background(), "highbuff_developer_seoul", "clip2.mp4")

	assert.Equal(t, map[string]string{
		"bucketName": "highbuff_developer_seoul",
		"objectKey":  "clip2.mp4",
	}, body)
}

func TestModerationRequesterSwallowsFailures(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	requester := services.NewHTTPModerationRequester(closed.URL, services.NewHTTPClient(time.Second))
	requester.RequestModeration(context.Background(), "b", "o")
}
