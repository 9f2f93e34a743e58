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

// Package commands. This file asks the external moderation service to start
// on a video before it is analyzed. The moderation document it eventually
// writes is the secondary input of the merge.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// ModerationRequest posts the video to the moderation service and passes the
// video through unchanged. The service expects the base name of the object,
// not its full path. The request is best effort and never fails the
// chain.
type ModerationRequest struct {
	cor.BaseCommand
	requester services.ModerationRequester
}

func NewModerationRequest(name string, requester services.ModerationRequester) *ModerationRequest {
	return &ModerationRequest{BaseCommand: *cor.NewBaseCommand(name), requester: requester}
}

func (c *ModerationRequest) Execute(context cor.Context) {
	video, ok := context.Get(c.GetInputParam()).(*model.VideoObject)
	if !ok {
		c.Fail(context, fmt.Errorf("expected *model.VideoObject, got %T", context.Get(c.GetInputParam())))
		return
	}
	c.requester.RequestModeration(context.GetContext(), video.Bucket, video.Name)
	c.Succeed(context)
	context.Add(c.GetOutputParam(), video)
}
