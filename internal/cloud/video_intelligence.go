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

// Package cloud provides components for interacting with Google Cloud services.
// This file wraps the Video Intelligence API. An annotation request is a
// long-running operation: the API writes its JSON result to the output URI
// given in the request, and the caller only learns whether the job succeeded.
//
// Structs:
//   - VideoIntelligenceAnnotator: VideoAnnotator backed by the Video Intelligence API.
//
// Functions:
//   - BuildAnnotateVideoRequest: Translates an AnalysisJob into the API request.
//   - AnnotateVideo: Submits the job and blocks until it completes or times out.
package cloud

import (
	"context"
	"fmt"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
)

// VideoAnnotator submits an analysis job and waits for it. Errors wrap one of
// ErrVideoNotFound, ErrPermissionDenied, ErrAnalysisTimeout or ErrAnalysisBackend.
type VideoAnnotator interface {
	AnnotateVideo(ctx context.Context, job *model.AnalysisJob) error
}

// VideoIntelligenceAnnotator is the production VideoAnnotator.
type VideoIntelligenceAnnotator struct {
	client *videointelligence.Client
}

// NewVideoIntelligenceAnnotator wraps an API client.
func NewVideoIntelligenceAnnotator(client *videointelligence.Client) *VideoIntelligenceAnnotator {
	return &VideoIntelligenceAnnotator{client: client}
}

// AnnotateVideo submits job and waits for the operation, bounded by
// job.Timeout when it is positive.
//
// Inputs:
//   - ctx: Cancelling it stops the wait; the job itself keeps running server side.
//   - job: The submission.
//
// Outputs:
//   - error: nil once the result has been written to job.OutputURI.
func (a *VideoIntelligenceAnnotator) AnnotateVideo(ctx context.Context, job *model.AnalysisJob) error {
	req, err := BuildAnnotateVideoRequest(job)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAnalysisBackend, err)
	}

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	op, err := a.client.AnnotateVideo(ctx, req)
	if err != nil {
		return ClassifyAnalysisError(err)
	}
	if _, err = op.Wait(ctx); err != nil {
		return ClassifyAnalysisError(err)
	}
	return nil
}

// BuildAnnotateVideoRequest translates job into an API request. Unknown
// feature names are an error.
func BuildAnnotateVideoRequest(job *model.AnalysisJob) (*videointelligencepb.AnnotateVideoRequest, error) {
	features := make([]videointelligencepb.Feature, 0, len(job.Features))
	for _, f := range job.Features {
		value, ok := videointelligencepb.Feature_value[string(f)]
		if !ok || value == int32(videointelligencepb.Feature_FEATURE_UNSPECIFIED) {
			return nil, fmt.Errorf("unknown analysis feature %q", f)
		}
		features = append(features, videointelligencepb.Feature(value))
	}

	req := &videointelligencepb.AnnotateVideoRequest{
		InputUri:  job.InputURI,
		OutputUri: job.OutputURI,
		Features:  features,
	}

	if job.SpeechTranscription != nil || job.PersonDetection != nil || job.FaceDetection != nil {
		videoContext := &videointelligencepb.VideoContext{}
		if s := job.SpeechTranscription; s != nil {
			videoContext.SpeechTranscriptionConfig = &videointelligencepb.SpeechTranscriptionConfig{
				LanguageCode:               s.LanguageCode,
				EnableAutomaticPunctuation: s.EnableAutomaticPunctuation,
			}
		}
		if p := job.PersonDetection; p != nil {
			videoContext.PersonDetectionConfig = &videointelligencepb.PersonDetectionConfig{
				IncludeBoundingBoxes: p.IncludeBoundingBoxes,
				IncludeAttributes:    p.IncludeAttributes,
				IncludePoseLandmarks: p.IncludePoseLandmarks,
			}
		}
		if f := job.FaceDetection; f != nil {
			videoContext.FaceDetectionConfig = &videointelligencepb.FaceDetectionConfig{
				IncludeBoundingBoxes: f.IncludeBoundingBoxes,
				IncludeAttributes:    f.IncludeAttributes,
			}
		}
		req.VideoContext = videoContext
	}
	return req, nil
}
