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

// Package main contains the logic for attaching the notification pipeline to
// the configured Pub/Sub subscriptions.
package main

import (
	"context"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/workflow"
)

// SetupListeners attaches the notification workflow to every configured
// subscription and starts receiving. Each listener hands videos to processor,
// the one the polling loop uses, so a video seen by either is not processed
// again.
//
// Inputs:
//   - ctx: The application's root context; cancelling it stops the listeners.
//   - config: The application configuration.
//   - cloudClients: Initialized clients, including the listeners.
//   - processor: The shared per-video processor.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients, processor *workflow.VideoProcessor) {
	notifications := workflow.NewVideoNotificationWorkflow(config, processor)
	for _, listener := range cloudClients.PubSubListeners {
		listener.SetCommand(notifications)
		listener.Listen(ctx)
	}
}
