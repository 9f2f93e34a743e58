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

// Package workflow. This file implements the per-video pipeline of the
// directory-watch controller.
package workflow

import (
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// WatchAnnotationWorkflow takes a *model.VideoObject at cor.CtxIn through
// analysis, fixed-name merge and a latest-only publish. It sends no
// moderation request and no completion notification.
type WatchAnnotationWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	deps   *Dependencies
	chain  cor.Chain
}

// Execute runs the underlying chain.
func (w *WatchAnnotationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *WatchAnnotationWorkflow) initializeChain(strategy services.MergeStrategy) {
	watcher := w.config.Watcher
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewVideoAnnotate("video-annotate", w.deps.Annotator, watcher.Analysis,
		w.config.Storage.Bucket, commands.FixedOutput(watcher.AnalysisOutputPrefix)).
		WithClock(w.deps.clock()))
	out.AddCommand(commands.NewFixedNameMerge("fixed-name-merge", w.deps.Store, strategy, watcher))
	out.AddCommand(commands.NewAnnotationPublish("annotation-publish", w.deps.publisher(w.config)))
	w.chain = out
}

// NewWatchAnnotationWorkflow is the constructor for the WatchAnnotationWorkflow.
func NewWatchAnnotationWorkflow(config *cloud.Config, deps *Dependencies) (*WatchAnnotationWorkflow, error) {
	strategy, err := services.NewMergeStrategy(config.Watcher.MergeStrategy)
	if err != nil {
		return nil, err
	}
	w := &WatchAnnotationWorkflow{
		BaseCommand: *cor.NewBaseCommand("watch-annotation-pipeline"),
		config:      config,
		deps:        deps,
	}
	w.initializeChain(strategy)
	return w, nil
}
