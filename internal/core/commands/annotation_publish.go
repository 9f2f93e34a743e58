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

// Package commands. This file defines the last step of every pipeline: it
// hands the merged document to the Publisher.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
)

// AnnotationPublish publishes the *model.PublishRequest at its input and
// stores the result under the publish result parameter.
type AnnotationPublish struct {
	cor.BaseCommand
	publisher *services.Publisher
}

func NewAnnotationPublish(name string, publisher *services.Publisher) *AnnotationPublish {
	return &AnnotationPublish{BaseCommand: *cor.NewBaseCommand(name), publisher: publisher}
}

func (c *AnnotationPublish) Execute(chCtx cor.Context) {
	req, ok := chCtx.Get(c.GetInputParam()).(*model.PublishRequest)
	if !ok {
		c.Fail(chCtx, fmt.Errorf("expected *model.PublishRequest, got %T", chCtx.Get(c.GetInputParam())))
		return
	}

	result := c.publisher.Publish(chCtx.GetContext(), req)
	chCtx.Add(GetPublishResultParameterName(), result)
	if result.Outcome == model.PublishOutcomeFailed {
		c.Fail(chCtx, fmt.Errorf("publish of %s failed: %w", result.Key, result.Err))
		return
	}
	c.Succeed(chCtx)
	chCtx.Add(c.GetOutputParam(), result)
}
