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

// Package workflow. This file holds the processor shared by the polling loop
// and the notification listener: it owns the processed set and serializes
// pipeline runs so at most one video is in flight per process.
package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// VideoProcessor runs a pipeline at most once per video name.
type VideoProcessor struct {
	mu        sync.Mutex
	processed services.ProcessedStore
	pipeline  cor.Command
}

// NewVideoProcessor creates a processor running pipeline for unseen videos.
func NewVideoProcessor(processed services.ProcessedStore, pipeline cor.Command) *VideoProcessor {
	return &VideoProcessor{processed: processed, pipeline: pipeline}
}

// Process runs the pipeline for video unless its name was seen before. The
// name is recorded whether or not the run succeeds; a failed video is
// abandoned, not retried.
//
// Inputs:
//   - ctx: The controller context.
//   - video: The detected video.
//
// Outputs:
//   - *model.PublishResult: The outcome, or nil when the video was already seen.
func (p *VideoProcessor) Process(ctx context.Context, video *model.VideoObject) *model.PublishResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen, err := p.processed.Contains(ctx, video.Name)
	if err != nil {
		slog.WarnContext(ctx, "processed set lookup failed; treating video as new", "video", video.Name, "error", err)
	}
	if seen {
		return nil
	}

	slog.InfoContext(ctx, "new video detected", "video", video.Name, "uri", video.URI())
	result := RunPipeline(ctx, p.pipeline, video)

	if err := p.processed.Add(ctx, video.Name); err != nil {
		slog.WarnContext(ctx, "failed to record processed video", "video", video.Name, "error", err)
	}
	return result
}

// RunPipeline executes pipeline for one video in a fresh chain context and
// reports the outcome. Chain errors are logged here; a run that failed before
// publishing yields a failed result carrying the joined errors.
func RunPipeline(ctx context.Context, pipeline cor.Command, video *model.VideoObject) *model.PublishResult {
	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(commands.GetVideoObjectParameterName(), video)
	chainCtx.Add(cor.CtxIn, video)

	pipeline.Execute(chainCtx)

	result, _ := chainCtx.Get(commands.GetPublishResultParameterName()).(*model.PublishResult)
	jobID, _ := chainCtx.Get(cor.CtxJobID).(string)
	if chainCtx.HasErrors() {
		for name, err := range chainCtx.GetErrors() {
			slog.ErrorContext(ctx, "pipeline step failed", "video", video.Name, "job_id", jobID, "step", name, "error", err)
		}
		if result == nil {
			result = &model.PublishResult{Key: video.Name, Outcome: model.PublishOutcomeFailed, Err: chainCtx.Err()}
		}
		return result
	}
	if result == nil {
		result = &model.PublishResult{Key: video.Name, Outcome: model.PublishOutcomeFailed}
	}
	slog.InfoContext(ctx, "video processed", "video", video.Name, "job_id", jobID, "result", result.String())
	return result
}
