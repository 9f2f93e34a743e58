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

package cloud_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/zeebo/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsRateLimited(t *testing.T) {
	assert.True(t, cloud.IsRateLimited(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, cloud.IsRateLimited(fmt.Errorf("write: %w", &googleapi.Error{Code: http.StatusTooManyRequests})))
	assert.True(t, cloud.IsRateLimited(status.Error(codes.ResourceExhausted, "quota")))
	assert.False(t, cloud.IsRateLimited(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, cloud.IsRateLimited(errors.New("boom")))
	assert.False(t, cloud.IsRateLimited(nil))
}

func TestClassifyAnalysisError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"http not found", &googleapi.Error{Code: http.StatusNotFound}, cloud.ErrVideoNotFound},
		{"http forbidden", &googleapi.Error{Code: http.StatusForbidden}, cloud.ErrPermissionDenied},
		{"http unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, cloud.ErrPermissionDenied},
		{"grpc not found", status.Error(codes.NotFound, "no such object"), cloud.ErrVideoNotFound},
		{"grpc permission", status.Error(codes.PermissionDenied, "denied"), cloud.ErrPermissionDenied},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "no token"), cloud.ErrPermissionDenied},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "slow"), cloud.ErrAnalysisTimeout},
		{"context deadline", context.DeadlineExceeded, cloud.ErrAnalysisTimeout},
		{"grpc internal", status.Error(codes.Internal, "oops"), cloud.ErrAnalysisBackend},
		{"plain", errors.New("boom"), cloud.ErrAnalysisBackend},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cloud.ClassifyAnalysisError(tc.err)
			assert.True(t, errors.Is(got, tc.want))
			assert.True(t, errors.Is(got, tc.err))
		})
	}
}

func TestClassifyAnalysisErrorPassesThrough(t *testing.T) {
	assert.Nil(t, cloud.ClassifyAnalysisError(nil))
	assert.Equal(t, context.Canceled, cloud.ClassifyAnalysisError(context.Canceled))
}

func TestDiagnoseDistinguishesClasses(t *testing.T) {
	messages := map[string]struct{}{}
	for _, err := range []error{
		nil,
		cloud.ClassifyAnalysisError(context.DeadlineExceeded),
		cloud.ClassifyAnalysisError(&googleapi.Error{Code: http.StatusNotFound}),
		cloud.ClassifyAnalysisError(&googleapi.Error{Code: http.StatusForbidden}),
		cloud.ClassifyAnalysisError(errors.New("boom")),
		context.Canceled,
	} {
		messages[cloud.Diagnose(err)] = struct{}{}
	}
	assert.Equal(t, 6, len(messages))
}
