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

// Package workflow. This file implements the directory-watch controller. The
// watched directory is the input prefix as seen through a gcsfuse mount, so a
// file created there is an object created under the prefix.
package workflow

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

// DirectoryWatcher runs a pipeline for every video file created in a
// directory. Subdirectories are not watched and there is no dedup: a file
// created twice is processed twice.
type DirectoryWatcher struct {
	directory   string
	bucket      string
	inputPrefix string
	filter      *services.VideoFilter
	pipeline    cor.Command
}

// NewDirectoryWatcher creates a watcher over config.WatchDirectory().
func NewDirectoryWatcher(config *cloud.Config, pipeline cor.Command) *DirectoryWatcher {
	return &DirectoryWatcher{
		directory:   config.WatchDirectory(),
		bucket:      config.Storage.Bucket,
		inputPrefix: config.Storage.InputPrefix,
		filter:      services.NewVideoFilter(config.Watcher.VideoExtensions),
		pipeline:    pipeline,
	}
}

// Directory returns the watched directory.
func (w *DirectoryWatcher) Directory() string {
	return w.directory
}

// HandleEvent runs the pipeline synchronously when event is the creation of
// a video file. It returns nil for every ignored event.
func (w *DirectoryWatcher) HandleEvent(ctx context.Context, event fsnotify.Event) *model.PublishResult {
	if !event.Has(fsnotify.Create) {
		return nil
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		slog.WarnContext(ctx, "created file vanished before it could be read", "path", event.Name, "error", err)
		return nil
	}
	if info.IsDir() || !w.filter.Accepts(event.Name) {
		return nil
	}

	video := model.NewVideoObject(w.bucket, w.inputPrefix+filepath.Base(event.Name), info.ModTime())
	video.ContentType = services.ContentTypeFor(event.Name)
	telemetry.VideosDetected.WithLabelValues("watch").Inc()
	slog.InfoContext(ctx, "video file created", "path", event.Name, "uri", video.URI())
	return RunPipeline(ctx, w.pipeline, video)
}

// Run watches the directory until ctx is cancelled.
func (w *DirectoryWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(w.directory); err != nil {
		return err
	}
	slog.InfoContext(ctx, "watching directory", "directory", w.directory)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.HandleEvent(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.ErrorContext(ctx, "watch error", "directory", w.directory, "error", err)
		}
	}
}
