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

// Package workflow defines the high-level orchestrations, combining commands
// into the per-video pipelines and driving them from the trigger controllers.
// This file gathers the collaborators every pipeline needs.
package workflow

import (
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// Dependencies are the collaborators of the pipelines. Tests fill them with
// fakes; NewDependencies wires the production ones.
type Dependencies struct {
	Store      cloud.BlobStore
	Annotator  cloud.VideoAnnotator
	Moderation services.ModerationRequester
	Notifier   services.Notifier
	Clock      func() time.Time // Defaults to time.Now.
}

// NewDependencies builds the production collaborators from the service
// clients and the notification settings.
//
// Inputs:
//   - config: The application configuration.
//   - clients: Initialized Google Cloud clients.
//
// Outputs:
//   - *Dependencies: Ready for NewVideoAnnotationWorkflow and NewWatchAnnotationWorkflow.
func NewDependencies(config *cloud.Config, clients *cloud.ServiceClients) *Dependencies {
	httpClient := services.NewHTTPClient(config.Notifications.Timeout())
	return &Dependencies{
		Store:      clients.BlobStore,
		Annotator:  clients.Annotator,
		Moderation: services.NewHTTPModerationRequester(config.Notifications.ModerationCreateURL, httpClient),
		Notifier:   services.NewHTTPMergeCompleteNotifier(config.Notifications.MergeCompleteURL, httpClient),
		Clock:      time.Now,
	}
}

func (d *Dependencies) clock() func() time.Time {
	if d.Clock == nil {
		return time.Now
	}
	return d.Clock
}

func (d *Dependencies) publisher(config *cloud.Config) *services.Publisher {
	uploader := services.NewUploader(d.Store, config.Upload.MaxAttempts, config.Upload.BaseDelay())
	return services.NewPublisher(d.Store, uploader, d.Notifier)
}
