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

// Package commands. This file defines the merge step of the watch pipeline,
// where the moderation document has a fixed name instead of a timestamp.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// FixedNameMerge merges the analysis document at its input with the fixed
// moderation object and emits an unguarded, latest-only PublishRequest.
// A missing moderation document fails the command when the strategy
// requires it.
type FixedNameMerge struct {
	cor.BaseCommand
	store    cloud.BlobStore
	strategy services.MergeStrategy
	config   cloud.WatcherConfig
}

func NewFixedNameMerge(name string, store cloud.BlobStore, strategy services.MergeStrategy, config cloud.WatcherConfig) *FixedNameMerge {
	return &FixedNameMerge{BaseCommand: *cor.NewBaseCommand(name), store: store, strategy: strategy, config: config}
}

func (c *FixedNameMerge) Execute(chCtx cor.Context) {
	analysisObject, ok := chCtx.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(chCtx, fmt.Errorf("expected analysis object name, got %T", chCtx.Get(c.GetInputParam())))
		return
	}
	ctx := chCtx.GetContext()

	key := analysisObject
	if video, ok := chCtx.Get(GetVideoObjectParameterName()).(*model.VideoObject); ok {
		key = video.Name
	}

	merged, err := services.LoadAndMerge(ctx, c.store, c.strategy, analysisObject, c.config.ModerationObject)
	if err != nil {
		c.Fail(chCtx, fmt.Errorf("merge for %s failed: %w", key, err))
		return
	}

	slog.InfoContext(ctx, "merged annotation documents",
		"video", key, "strategy", c.strategy.Name(), "secondary", c.config.ModerationObject)
	c.Succeed(chCtx)
	chCtx.Add(c.GetOutputParam(), &model.PublishRequest{
		Key:        key,
		LatestPath: c.config.LatestObject,
		Document:   merged,
	})
}
