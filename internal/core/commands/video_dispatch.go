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

// Package commands. This file connects the notification pipeline to the
// per-video processor shared with the polling loop.
package commands

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

// VideoProcessor runs the per-video pipeline for one detected video.
type VideoProcessor interface {
	Process(ctx context.Context, video *model.VideoObject) *model.PublishResult
}

// VideoDispatch hands the *model.VideoObject at its input to a VideoProcessor.
// Failures inside the processor are logged there and do not fail this chain,
// so the triggering message is acknowledged and not redelivered.
type VideoDispatch struct {
	cor.BaseCommand
	processor VideoProcessor
}

func NewVideoDispatch(name string, processor VideoProcessor) *VideoDispatch {
	return &VideoDispatch{BaseCommand: *cor.NewBaseCommand(name), processor: processor}
}

func (c *VideoDispatch) Execute(chCtx cor.Context) {
	video, ok := chCtx.Get(c.GetInputParam()).(*model.VideoObject)
	if !ok {
		c.Fail(chCtx, fmt.Errorf("expected *model.VideoObject, got %T", chCtx.Get(c.GetInputParam())))
		return
	}
	if result := c.processor.Process(chCtx.GetContext(), video); result != nil {
		telemetry.VideosDetected.WithLabelValues("notification").Inc()
		chCtx.Add(GetPublishResultParameterName(), result)
	}
	c.Succeed(chCtx)
}
