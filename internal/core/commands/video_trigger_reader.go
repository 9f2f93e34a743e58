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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// entry command of the notification-triggered pipeline.
//
// Logic Flow:
// Cloud Storage publishes an OBJECT_FINALIZE notification to Pub/Sub for every
// object written to the bucket, outputs included. This command parses the
// message and decides whether it describes a new input video.
//
//  1. The raw Pub/Sub message data is read from the input parameter as a string.
//  2. It is unmarshalled into a `cloud.GCSPubSubNotification`.
//  3. Objects outside the input prefix, or whose extension is not an accepted
//     video type, are logged and dropped: no output is produced, so the rest
//     of the chain is skipped and the message is still acknowledged.
//  4. Accepted objects become a `model.VideoObject`, stored under the
//     well-known video parameter and the output parameter.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// GetVideoObjectParameterName returns the context key holding the
// *model.VideoObject a pipeline is working on.
func GetVideoObjectParameterName() string {
	return "__VIDEO_OBJECT__"
}

// VideoTriggerReader turns a GCS notification into a VideoObject.
type VideoTriggerReader struct {
	cor.BaseCommand
	inputPrefix string
	filter      *services.VideoFilter
}

// NewVideoTriggerReader is the constructor for the VideoTriggerReader command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - inputPrefix: Only objects under this prefix are videos to process.
//   - filter: The accepted video extensions.
//
// Outputs:
//   - *VideoTriggerReader: A pointer to the newly instantiated command.
func NewVideoTriggerReader(name string, inputPrefix string, filter *services.VideoFilter) *VideoTriggerReader {
	return &VideoTriggerReader{BaseCommand: *cor.NewBaseCommand(name), inputPrefix: inputPrefix, filter: filter}
}

// Execute parses the notification held in the input parameter.
func (c *VideoTriggerReader) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(context, fmt.Errorf("expected notification text, got %T", context.Get(c.GetInputParam())))
		return
	}

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	if !strings.HasPrefix(out.Name, c.inputPrefix) {
		slog.DebugContext(context.GetContext(), "ignoring object outside the input prefix", "object", out.Name)
		c.Succeed(context)
		return
	}
	if !c.filter.Accepts(out.Name) {
		slog.DebugContext(context.GetContext(), "ignoring object that is not a video", "object", out.Name)
		c.Succeed(context)
		return
	}

	video := model.NewVideoObject(out.Bucket, out.Name, out.Created())
	video.ContentType = out.ContentType
	if video.ContentType == "" {
		video.ContentType = services.ContentTypeFor(out.Name)
	}

	c.Succeed(context)
	context.Add(GetVideoObjectParameterName(), video)
	context.Add(c.GetOutputParam(), video)
}
