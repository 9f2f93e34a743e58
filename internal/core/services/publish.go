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

// Package services. This file, `publish.go`, writes a merged document where
// the viewer finds it.
//
// Logic Flow:
//  1. With Guard set, an existing archival object means the merge was
//     already published: nothing is written and nobody is notified.
//  2. The archival copy is written, then the latest copy is overwritten.
//     Both carry Cache-Control: no-cache.
//  3. With Notify set, the completion notifier is called.
//
// A publish never returns an error to its caller; failures are logged and
// reported in the PublishResult.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

// Publisher implements the publish protocol.
type Publisher struct {
	store    cloud.BlobStore
	uploader *Uploader
	notifier Notifier
}

// NewPublisher creates a Publisher. notifier may be nil when no request sets Notify.
func NewPublisher(store cloud.BlobStore, uploader *Uploader, notifier Notifier) *Publisher {
	return &Publisher{store: store, uploader: uploader, notifier: notifier}
}

// Publish writes req.Document according to req.
//
// Inputs:
//   - ctx: The request context.
//   - req: Destinations, guard and notify flags, and the document.
//
// Outputs:
//   - *model.PublishResult: Always non-nil.
func (p *Publisher) Publish(ctx context.Context, req *model.PublishRequest) *model.PublishResult {
	result := &model.PublishResult{
		Key:          req.Key,
		ArchivalPath: req.ArchivalPath,
		LatestPath:   req.LatestPath,
	}

	if req.Guard && req.ArchivalPath != "" {
		exists, err := p.store.Exists(ctx, req.ArchivalPath)
		if err != nil {
			return p.fail(ctx, result, fmt.Errorf("failed to check %s: %w", req.ArchivalPath, err))
		}
		if exists {
			result.Outcome = model.PublishOutcomeAlreadyMerged
			telemetry.Publishes.WithLabelValues(string(result.Outcome)).Inc()
			slog.InfoContext(ctx, "already merged; skipping publish", "key", req.Key, "archival", req.ArchivalPath)
			return result
		}
	}

	data, err := req.Document.Marshal()
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("failed to encode merged document: %w", err))
	}

	if req.ArchivalPath != "" {
		if err := p.uploader.Upload(ctx, req.ArchivalPath, data, cloud.NoCacheJSON); err != nil {
			return p.fail(ctx, result, err)
		}
	}
	if err := p.uploader.Upload(ctx, req.LatestPath, data, cloud.NoCacheJSON); err != nil {
		return p.fail(ctx, result, err)
	}

	if req.Notify && p.notifier != nil {
		p.notifier.Notify(ctx)
		result.Notified = true
	}

	result.Outcome = model.PublishOutcomePublished
	telemetry.Publishes.WithLabelValues(string(result.Outcome)).Inc()
	slog.InfoContext(ctx, "published merged document",
		"key", req.Key, "archival", req.ArchivalPath, "latest", req.LatestPath, "notified", result.Notified)
	return result
}

func (p *Publisher) fail(ctx context.Context, result *model.PublishResult, err error) *model.PublishResult {
	result.Outcome = model.PublishOutcomeFailed
	result.Err = err
	telemetry.Publishes.WithLabelValues(string(result.Outcome)).Inc()
	slog.ErrorContext(ctx, "publish failed", "key", result.Key, "error", err)
	return result
}
