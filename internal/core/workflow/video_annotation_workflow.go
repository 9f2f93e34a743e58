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
// polling and notification controllers.
package workflow

import (
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// VideoAnnotationWorkflow takes a *model.VideoObject at cor.CtxIn through
// moderation request, analysis, timestamp merge and guarded publish.
type VideoAnnotationWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	deps   *Dependencies
	chain  cor.Chain
}

// Execute runs the underlying chain.
func (w *VideoAnnotationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *VideoAnnotationWorkflow) initializeChain(strategy services.MergeStrategy) {
	poller := w.config.Poller
	out := cor.NewBaseChain(w.GetName())

	// Best effort; the moderation document is optional for this merge.
	out.AddCommand(commands.NewModerationRequest("moderation-request", w.deps.Moderation))

	// Blocks until the analysis document is written to the analysis prefix.
	out.AddCommand(commands.NewVideoAnnotate("video-annotate", w.deps.Annotator, poller.Analysis,
		w.config.Storage.Bucket, commands.TimestampedOutput(poller.AnalysisOutputPrefix)).
		WithClock(w.deps.clock()))

	// Emits nothing when merged_<token>.json already exists.
	out.AddCommand(commands.NewTimestampMerge("timestamp-merge", w.deps.Store, strategy, poller))

	out.AddCommand(commands.NewAnnotationPublish("annotation-publish", w.deps.publisher(w.config)))

	w.chain = out
}

// NewVideoAnnotationWorkflow is the constructor for the VideoAnnotationWorkflow.
//
// Inputs:
//   - config: The application configuration; the poller section is used.
//   - deps: The pipeline collaborators.
//
// Returns:
//   - The workflow, or ErrUnknownMergeStrategy for a bad strategy name.
func NewVideoAnnotationWorkflow(config *cloud.Config, deps *Dependencies) (*VideoAnnotationWorkflow, error) {
	strategy, err := services.NewMergeStrategy(config.Poller.MergeStrategy)
	if err != nil {
		return nil, err
	}
	w := &VideoAnnotationWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-annotation-pipeline"),
		config:      config,
		deps:        deps,
	}
	w.initializeChain(strategy)
	return w, nil
}
