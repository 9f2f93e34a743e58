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

package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Analysis failure classes. Errors returned by a VideoAnnotator wrap exactly
// one of these together with the underlying cause.
var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAnalysisTimeout  = errors.New("analysis timed out")
	ErrAnalysisBackend  = errors.New("analysis backend error")
)

// IsRateLimited reports whether err is a rate-limit rejection from a Google
// API, over either HTTP (429) or gRPC (RESOURCE_EXHAUSTED).
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}

// ClassifyAnalysisError wraps err with the matching failure class. A nil err
// and an interrupted context are returned unchanged.
func ClassifyAnalysisError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAnalysisTimeout, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrVideoNotFound, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.NotFound:
			return fmt.Errorf("%w: %w", ErrVideoNotFound, err)
		case codes.PermissionDenied, codes.Unauthenticated:
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		case codes.DeadlineExceeded:
			return fmt.Errorf("%w: %w", ErrAnalysisTimeout, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrAnalysisBackend, err)
}

// Diagnose returns the operator-facing message for an analysis failure.
func Diagnose(err error) string {
	switch {
	case err == nil:
		return "analysis completed"
	case errors.Is(err, ErrAnalysisTimeout):
		return "analysis did not finish within its time budget; the job was abandoned"
	case errors.Is(err, ErrVideoNotFound):
		return "the input video was not found; check the bucket and object name"
	case errors.Is(err, ErrPermissionDenied):
		return "permission denied; check the service account's access to the bucket and the Video Intelligence API"
	case errors.Is(err, context.Canceled):
		return "analysis wait was interrupted"
	default:
		return "the analysis backend returned an error"
	}
}
