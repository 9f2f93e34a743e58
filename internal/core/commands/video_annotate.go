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

// Package commands. This file defines the command that submits a video to the
// Video Intelligence API and blocks until the analysis document is written.
//
// Logic Flow:
//  1. The *model.VideoObject is read from the input parameter.
//  2. A timestamp token (YYYYMMDD_HHMMSS) is taken from the clock; the output
//     object name is derived from the video stem and the token by an
//     OutputNamer, which differs between the polling and watch pipelines.
//  3. An AnalysisJob is built from the configured AnalysisProfile and given a
//     deterministic job ID, which is stored under cor.CtxJobID for log and
//     trace correlation.
//  4. The job is submitted through the cloud.VideoAnnotator. Failures are
//     classified, logged with an operator diagnostic and recorded on the
//     chain; the video is abandoned.
//  5. On success the output object name becomes the command output.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GetAnalysisJobParameterName returns the context key holding the submitted
// *model.AnalysisJob.
func GetAnalysisJobParameterName() string {
	return "__ANALYSIS_JOB__"
}

// OutputNamer maps a video and a timestamp token to the object name the
// analysis document is written to.
type OutputNamer func(video *model.VideoObject, token string) string

// TimestampedOutput names outputs <prefix><stem>-<token>.json.
func TimestampedOutput(prefix string) OutputNamer {
	return func(video *model.VideoObject, token string) string {
		return prefix + video.Stem() + "-" + token + ".json"
	}
}

// FixedOutput names outputs <prefix>output-<stem>.json.
func FixedOutput(prefix string) OutputNamer {
	return func(video *model.VideoObject, _ string) string {
		return prefix + "output-" + video.Stem() + ".json"
	}
}

// NewAnalysisJob builds the submission for video from profile.
func NewAnalysisJob(video *model.VideoObject, outputBucket string, outputObject string, profile cloud.AnalysisProfile) *model.AnalysisJob {
	features := make([]model.Feature, 0, len(profile.Features))
	for _, f := range profile.Features {
		features = append(features, model.Feature(f))
	}

	job := &model.AnalysisJob{
		Video:     video,
		InputURI:  video.URI(),
		OutputURI: model.GCSURI(outputBucket, outputObject),
		Features:  features,
		PersonDetection: &model.PersonDetectionOptions{
			IncludeBoundingBoxes: profile.PersonBoundingBoxes,
			IncludeAttributes:    profile.PersonAttributes,
			IncludePoseLandmarks: profile.PersonPoseLandmarks,
		},
		FaceDetection: &model.FaceDetectionOptions{
			IncludeBoundingBoxes: profile.FaceBoundingBoxes,
			IncludeAttributes:    profile.FaceAttributes,
		},
		Timeout: profile.Timeout(),
	}
	if profile.LanguageCode != "" {
		job.SpeechTranscription = &model.SpeechTranscriptionOptions{
			LanguageCode:               profile.LanguageCode,
			EnableAutomaticPunctuation: profile.EnableAutomaticPunctuation,
		}
	}
	return job
}

// VideoAnnotate submits the input video for analysis.
type VideoAnnotate struct {
	cor.BaseCommand
	annotator cloud.VideoAnnotator
	profile   cloud.AnalysisProfile
	namer     OutputNamer
	bucket    string
	now       func() time.Time
}

// NewVideoAnnotate is the constructor for the VideoAnnotate command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - annotator: The analysis backend.
//   - profile: Features and video context of the submission.
//   - bucket: The bucket the analysis document is written to.
//   - namer: Derives the analysis object name.
//
// Outputs:
//   - *VideoAnnotate: A pointer to the newly instantiated command.
func NewVideoAnnotate(name string, annotator cloud.VideoAnnotator, profile cloud.AnalysisProfile, bucket string, namer OutputNamer) *VideoAnnotate {
	return &VideoAnnotate{
		BaseCommand: *cor.NewBaseCommand(name),
		annotator:   annotator,
		profile:     profile,
		namer:       namer,
		bucket:      bucket,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for timestamp tokens.
func (c *VideoAnnotate) WithClock(now func() time.Time) *VideoAnnotate {
	c.now = now
	return c
}

func (c *VideoAnnotate) Execute(chCtx cor.Context) {
	video, ok := chCtx.Get(c.GetInputParam()).(*model.VideoObject)
	if !ok {
		c.Fail(chCtx, fmt.Errorf("expected *model.VideoObject, got %T", chCtx.Get(c.GetInputParam())))
		return
	}
	ctx := chCtx.GetContext()

	token := c.now().Format(services.TimestampLayout)
	outputObject := c.namer(video, token)
	job := NewAnalysisJob(video, c.bucket, outputObject, c.profile)
	job.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(job.InputURI+"#"+token)).String()

	chCtx.Add(cor.CtxJobID, job.ID)
	chCtx.Add(GetAnalysisJobParameterName(), job)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.String("video.uri", job.InputURI),
	)

	slog.InfoContext(ctx, "submitting video for analysis",
		"job_id", job.ID, "input", job.InputURI, "output", job.OutputURI, "features", job.Features)
	err := c.annotator.AnnotateVideo(ctx, job)
	telemetry.Analyses.WithLabelValues(analysisOutcome(err)).Inc()
	if err != nil {
		slog.ErrorContext(ctx, cloud.Diagnose(err), "job_id", job.ID, "input", job.InputURI, "error", err)
		c.Fail(chCtx, fmt.Errorf("analysis of %s failed: %w", job.InputURI, err))
		return
	}

	slog.InfoContext(ctx, "analysis complete", "job_id", job.ID, "output", job.OutputURI)
	c.Succeed(chCtx)
	chCtx.Add(c.GetOutputParam(), outputObject)
}

func analysisOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cloud.ErrAnalysisTimeout):
		return "timeout"
	case errors.Is(err, cloud.ErrVideoNotFound):
		return "not_found"
	case errors.Is(err, cloud.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "backend_error"
	}
}
