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

package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestFindLatestPicksNewestVideo(t *testing.T) {
	h := newHarness()
	base := time.Date(2024, 10, 11, 3, 0, 0, 0, time.UTC)
	h.store.Put("visualize-input/clip1.mp4", []byte("v1"), base)
	h.store.Put("visualize-input/clip2.mp4", []byte("v2"), base.Add(time.Minute))
	h.store.Put("visualize-input/notes.txt", []byte("n"), base.Add(time.Hour))
	h.store.Put("visualize-input/clip0.mov", []byte("v0"), base.Add(time.Hour))

	video, err := h.newPoller(t).FindLatest(context.Background())

	require.NoError(t, err)
	require.NotNil(t, video)
	assert.Equal(t, "clip2.mp4", video.Name)
	assert.Equal(t, "gs://highbuff_developer_seoul/visualize-input/clip2.mp4", video.URI())
	assert.Equal(t, "video/mp4", video.ContentType)
}

func TestFindLatestTieGoesToFirstListed(t *testing.T) {
	h := newHarness()
	created := time.Date(2024, 10, 11, 3, 0, 0, 0, time.UTC)
	h.store.Put("visualize-input/b.mp4", []byte("b"), created)
	h.store.Put("visualize-input/a.mp4", []byte("a"), created)

	video, err := h.newPoller(t).FindLatest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "b.mp4", video.Name)
}

func TestFindLatestWithoutVideos(t *testing.T) {
	h := newHarness()
	h.store.PutString("visualize-input/notes.txt", "n")

	video, err := h.newPoller(t).FindLatest(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, video)
}

func TestPollOnceListFailure(t *testing.T) {
	h := newHarness()
	h.store.ListErr = errors.New("bucket unavailable")

	result, err := h.newPoller(t).PollOnce(context.Background())

	assert.ErrorIs(t, err, h.store.ListErr)
	assert.Nil(t, result)
}

// TestPollingPipelineEndToEnd runs the polling pipeline twice for the same
// video and once more after a simulated restart.
func TestPollingPipelineEndToEnd(t *testing.T) {
	traceCtx, span := tracer.Start(context.Background(), "polling-pipeline-test")
	defer span.End()

	h := newHarness()
	h.store.Put("visualize-input/clip1.mp4", []byte("v1"), time.Date(2024, 10, 11, 3, 0, 0, 0, time.UTC))
	h.store.Put("visualize-input/clip2.mp4", []byte("v2"), time.Date(2024, 10, 11, 3, 1, 0, 0, time.UTC))
	h.store.PutString("visualize-aws-output-files/foo-20240101_120000.json", model.ExampleModerationJSON)
	poller := h.newPoller(t)

	result, err := poller.PollOnce(traceCtx)
	require.NoError(t, err)
	require.NotNil(t, result)
	if result.Err != nil {
		span.SetStatus(codes.Error, "polling pipeline failed")
		logger.ErrorContext(traceCtx, "polling pipeline failed", "error", result.Err)
	}
	assert.Equal(t, model.PublishOutcomePublished, result.Outcome)
	assert.True(t, result.Notified)

	assert.Equal(t, 1, h.annotator.JobCount())
	assert.Equal(t, "gs://highbuff_developer_seoul/temp-output-json-files/clip2-20240101_120000.json", h.annotator.Jobs[0].OutputURI)
	require.Len(t, h.moderation.Calls(), 1)
	assert.Equal(t, "clip2.mp4", h.moderation.Calls()[0].ObjectKey)
	assert.Equal(t, 1, h.notifier.Calls())

	archival := h.store.Get("visualize-final-output-files/merged_20240101_120000.json")
	latest := h.store.Get("visualize-view-final-output-files/final_output.json")
	require.NotNil(t, archival)
	require.NotNil(t, latest)
	assert.Equal(t, archival.Data, latest.Data)
	assert.Equal(t, cloud.CacheControlNoCache, latest.Options.CacheControl)

	merged, err := model.ParseAnnotationDocument(latest.Data)
	require.NoError(t, err)
	results, _ := merged.AnnotationResults()
	explicit := results[0].(map[string]interface{})[model.FieldExplicitAnnotation]
	assert.Equal(t, model.GetExampleModerationDocument()[model.FieldExplicitAnnotation], explicit)

	// Seen videos are ignored silently.
	again, err := poller.PollOnce(traceCtx)
	assert.NoError(t, err)
	assert.Nil(t, again)
	assert.Equal(t, 1, h.annotator.JobCount())

	// After a restart the processed set is empty, but the archival guard
	// keeps the merge from running twice.
	restarted, err := h.newPoller(t).PollOnce(traceCtx)
	require.NoError(t, err)
	require.NotNil(t, restarted)
	assert.Equal(t, model.PublishOutcomeAlreadyMerged, restarted.Outcome)
	assert.Equal(t, 2, h.annotator.JobCount())
	assert.Equal(t, 1, h.notifier.Calls())
	assert.Equal(t, 1, h.store.WriteCount("visualize-final-output-files/merged_20240101_120000.json"))

	span.SetStatus(codes.Ok, "passed - polling pipeline test")
}

func TestFailedVideoIsNotRetried(t *testing.T) {
	h := newHarness()
	h.annotator.Err = cloud.ClassifyAnalysisError(errors.New("internal"))
	h.store.PutString("visualize-input/clip2.mp4", "v2")
	poller := h.newPoller(t)

	result, err := poller.PollOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, model.PublishOutcomeFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, cloud.ErrAnalysisBackend)

	again, err := poller.PollOnce(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, again)
	assert.Equal(t, 1, h.annotator.JobCount())
	assert.Equal(t, 0, h.notifier.Calls())
}

func TestPollerRunPollsImmediately(t *testing.T) {
	h := newHarness()
	h.store.PutString("visualize-input/clip2.mp4", "v2")
	poller := h.newPoller(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	assert.Eventually(t, func() bool { return h.annotator.JobCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestUnknownMergeStrategy(t *testing.T) {
	h := newHarness()
	h.config.Poller.MergeStrategy = "union"
	_, err := workflow.NewVideoAnnotationWorkflow(h.config, h.deps)
	assert.Error(t, err)
}
