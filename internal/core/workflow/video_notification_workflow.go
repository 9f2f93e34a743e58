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

// Package workflow. This file implements the pipeline attached to the Pub/Sub
// listener: it turns an object notification into a processor call.
package workflow

import (
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// VideoNotificationWorkflow parses the notification at cor.CtxIn and hands
// accepted videos to the shared VideoProcessor. Only an unparseable message
// leaves an error on the chain context, so only that is redelivered.
type VideoNotificationWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// Execute runs the underlying chain.
func (w *VideoNotificationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// NewVideoNotificationWorkflow is the constructor for the VideoNotificationWorkflow.
func NewVideoNotificationWorkflow(config *cloud.Config, processor *VideoProcessor) *VideoNotificationWorkflow {
	w := &VideoNotificationWorkflow{BaseCommand: *cor.NewBaseCommand("video-notification-pipeline")}
	filter := services.NewVideoFilter(config.Poller.VideoExtensions)
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewVideoTriggerReader("video-trigger-reader", config.Storage.InputPrefix, filter))
	out.AddCommand(commands.NewVideoDispatch("video-dispatch", processor))
	w.chain = out
	return w
}
