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

// Package workflow_test exercises the pipelines and trigger controllers
// against in-memory storage and a fake analysis backend.
package workflow_test

import (
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-video-annotate/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const tName = "github.com/jaycherian/gcp-go-video-annotate/tests/workflow"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

var token = time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

// harness bundles a configuration with fake collaborators.
type harness struct {
	config     *cloud.Config
	store      *test.MemoryBlobStore
	annotator  *test.FakeAnnotator
	notifier   *test.RecordingNotifier
	moderation *test.RecordingModerationRequester
	deps       *workflow.Dependencies
}

func newHarness() *harness {
	store := test.NewMemoryBlobStore()
	h := &harness{
		config:     test.NewTestConfig(),
		store:      store,
		annotator:  &test.FakeAnnotator{Store: store},
		notifier:   &test.RecordingNotifier{},
		moderation: &test.RecordingModerationRequester{},
	}
	h.deps = &workflow.Dependencies{
		Store:      h.store,
		Annotator:  h.annotator,
		Moderation: h.moderation,
		Notifier:   h.notifier,
		Clock:      func() time.Time { return token },
	}
	return h
}

// newProcessor returns a processor with its own, empty processed set.
func (h *harness) newProcessor(t *testing.T) *workflow.VideoProcessor {
	t.Helper()
	pipeline, err := workflow.NewVideoAnnotationWorkflow(h.config, h.deps)
	require.NoError(t, err)
	return workflow.NewVideoProcessor(services.NewMemoryProcessedStore(), pipeline)
}

func (h *harness) newPoller(t *testing.T) *workflow.LatestVideoPoller {
	t.Helper()
	return workflow.NewLatestVideoPoller(h.config, h.store, h.newProcessor(t))
}
