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

// Package workflow. This file implements the polling controller: every few
// seconds it lists the input prefix and hands the newest video to the
// processor.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

// LatestVideoPoller selects the most recently created video under a prefix.
type LatestVideoPoller struct {
	store     cloud.BlobStore
	bucket    string
	prefix    string
	filter    *services.VideoFilter
	interval  time.Duration
	processor *VideoProcessor
}

// NewLatestVideoPoller creates a poller over config.Storage.InputPrefix.
func NewLatestVideoPoller(config *cloud.Config, store cloud.BlobStore, processor *VideoProcessor) *LatestVideoPoller {
	return &LatestVideoPoller{
		store:     store,
		bucket:    config.Storage.Bucket,
		prefix:    config.Storage.InputPrefix,
		filter:    services.NewVideoFilter(config.Poller.VideoExtensions),
		interval:  config.Poller.Interval(),
		processor: processor,
	}
}

// FindLatest returns the accepted video with the greatest creation time, or
// nil when there is none. Ties go to the object listed first.
func (p *LatestVideoPoller) FindLatest(ctx context.Context) (*model.VideoObject, error) {
	objects, err := p.store.List(ctx, p.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p.prefix, err)
	}
	var latest *cloud.ObjectAttrs
	for i := range objects {
		if !p.filter.Accepts(objects[i].Name) {
			continue
		}
		if latest == nil || objects[i].Created.After(latest.Created) {
			latest = &objects[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	video := model.NewVideoObject(p.bucket, latest.Name, latest.Created)
	video.ContentType = latest.ContentType
	if video.ContentType == "" {
		video.ContentType = services.ContentTypeFor(latest.Name)
	}
	return video, nil
}

// PollOnce processes the latest video if it has not been seen.
func (p *LatestVideoPoller) PollOnce(ctx context.Context) (*model.PublishResult, error) {
	video, err := p.FindLatest(ctx)
	if err != nil || video == nil {
		return nil, err
	}
	result := p.processor.Process(ctx, video)
	if result != nil {
		telemetry.VideosDetected.WithLabelValues("poll").Inc()
	}
	return result, nil
}

// Run polls immediately and then on every tick until ctx is cancelled.
// Poll failures are logged and the loop continues.
func (p *LatestVideoPoller) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "polling for videos", "bucket", p.bucket, "prefix", p.prefix, "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		if _, err := p.PollOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
