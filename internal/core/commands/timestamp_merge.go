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

// Package commands. This file defines the merge step of the polling pipeline.
//
// Logic Flow:
//  1. The analysis object name is read from the input parameter and its
//     timestamp token extracted.
//  2. If merged_<token>.json already exists in the archival prefix the video
//     has been merged before: an already_merged result is stored and nothing
//     is emitted, so the publish step is skipped.
//  3. The analysis document the job just wrote is the primary input. The
//     moderation prefix is indexed by token and the document with the same
//     token, when there is one, is the secondary.
//  4. The configured strategy merges them, and a guarded, notifying
//     PublishRequest for the archival and latest objects is emitted.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

// GetPublishResultParameterName returns the context key holding the
// *model.PublishResult of a pipeline run.
func GetPublishResultParameterName() string {
	return "__PUBLISH_RESULT__"
}

// TimestampMerge merges the analysis and moderation documents that share a
// timestamp token.
type TimestampMerge struct {
	cor.BaseCommand
	store    cloud.BlobStore
	strategy services.MergeStrategy
	config   cloud.PollerConfig
}

func NewTimestampMerge(name string, store cloud.BlobStore, strategy services.MergeStrategy, config cloud.PollerConfig) *TimestampMerge {
	return &TimestampMerge{BaseCommand: *cor.NewBaseCommand(name), store: store, strategy: strategy, config: config}
}

func (c *TimestampMerge) Execute(chCtx cor.Context) {
	analysisObject, ok := chCtx.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(chCtx, fmt.Errorf("expected analysis object name, got %T", chCtx.Get(c.GetInputParam())))
		return
	}
	ctx := chCtx.GetContext()

	token, ok := services.ExtractTimestamp(analysisObject)
	if !ok {
		c.Fail(chCtx, fmt.Errorf("%s: %w", analysisObject, services.ErrNoTimestamp))
		return
	}

	archivalPath := c.config.ArchivalPath(token)
	exists, err := c.store.Exists(ctx, archivalPath)
	if err != nil {
		c.Fail(chCtx, fmt.Errorf("failed to check %s: %w", archivalPath, err))
		return
	}
	if exists {
		slog.InfoContext(ctx, "already merged", "token", token, "archival", archivalPath)
		telemetry.Publishes.WithLabelValues(string(model.PublishOutcomeAlreadyMerged)).Inc()
		chCtx.Add(GetPublishResultParameterName(), &model.PublishResult{
			Key:          token,
			Outcome:      model.PublishOutcomeAlreadyMerged,
			ArchivalPath: archivalPath,
			LatestPath:   c.config.LatestPath(),
		})
		c.Succeed(chCtx)
		return
	}

	moderationIndex, err := services.BuildTimestampIndex(ctx, c.store, c.config.ModerationOutputPrefix)
	if err != nil {
		c.Fail(chCtx, err)
		return
	}
	secondaryPath, _ := moderationIndex.Lookup(token)

	merged, err := services.LoadAndMerge(ctx, c.store, c.strategy, analysisObject, secondaryPath)
	if err != nil {
		c.Fail(chCtx, fmt.Errorf("merge for %s failed: %w", token, err))
		return
	}

	slog.InfoContext(ctx, "merged annotation documents",
		"token", token, "strategy", c.strategy.Name(), "primary", analysisObject, "secondary", secondaryPath)
	c.Succeed(chCtx)
	chCtx.Add(c.GetOutputParam(), &model.PublishRequest{
		Key:          token,
		ArchivalPath: archivalPath,
		LatestPath:   c.config.LatestPath(),
		Guard:        true,
		Notify:       true,
		Document:     merged,
	})
}
