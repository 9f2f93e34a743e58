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

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-annotate/internal/api"
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	test "github.com/jaycherian/gcp-go-video-annotate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func newRouter(store cloud.BlobStore) http.Handler {
	return api.NewRouter(api.NewViewer(test.NewTestConfig(), store), "viewer-test")
}

func TestLatestAnnotationsMissing(t *testing.T) {
	rec := serve(newRouter(test.NewMemoryBlobStore()), "/api/v1/annotations/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestAnnotationsServesDocumentUncached(t *testing.T) {
	store := test.NewMemoryBlobStore()
	store.PutString("visualize-view-final-output-files/final_output.json", model.ExampleAnalysisJSON)
	store.PutString("visualize-final-output-files/moderation_result.json", `{"annotation_results":[]}`)
	router := newRouter(store)

	rec := serve(router, "/api/v1/annotations/latest")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
	assert.JSONEq(t, model.ExampleAnalysisJSON, rec.Body.String())

	rec = serve(router, "/api/v1/annotations/latest?source=watch")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"annotation_results":[]}`, rec.Body.String())
}

type brokenStore struct {
	cloud.BlobStore
}

func (brokenStore) Read(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("backend unavailable")
}

func TestLatestAnnotationsStorageFailure(t *testing.T) {
	rec := serve(newRouter(brokenStore{}), "/api/v1/annotations/latest")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMergeCompleteIsCounted(t *testing.T) {
	router := newRouter(test.NewMemoryBlobStore())

	var status api.Status
	rec := serve(router, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, int64(0), status.MergeCount)
	assert.Nil(t, status.LastMergeTime)

	assert.Equal(t, http.StatusOK, serve(router, "/merge-complete").Code)
	assert.Equal(t, http.StatusOK, serve(router, "/merge-complete").Code)

	rec = serve(router, "/api/v1/status")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, int64(2), status.MergeCount)
	assert.NotNil(t, status.LastMergeTime)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newRouter(test.NewMemoryBlobStore())

	assert.Equal(t, http.StatusOK, serve(router, "/healthz").Code)

	serve(router, "/merge-complete")
	rec := serve(router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "video_annotate_merge_complete_callbacks_total")
}

func TestOperationsRouter(t *testing.T) {
	router := api.NewOperationsRouter()
	assert.Equal(t, http.StatusOK, serve(router, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(router, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "/merge-complete").Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Serve(ctx, "127.0.0.1:0", api.NewOperationsRouter()) }()
	cancel()
	assert.NoError(t, <-done)
}
