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

package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-annotate/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// recordingTimer fires at once and remembers every requested delay.
type recordingTimer struct {
	delays []time.Duration
	fired  chan time.Time
}

func newRecordingTimer() *recordingTimer {
	return &recordingTimer{fired: make(chan time.Time, 1)}
}

func (r *recordingTimer) Start(d time.Duration) {
	r.delays = append(r.delays, d)
	r.fired <- time.Now()
}

func (r *recordingTimer) Stop() {}

func (r *recordingTimer) C() <-chan time.Time {
	return r.fired
}

func TestUploadRetriesRateLimitWithBackoff(t *testing.T) {
	store := test.NewMemoryBlobStore()
	store.FailWrites("latest.json", test.RateLimitError(), test.RateLimitError(), test.RateLimitError(), test.RateLimitError())
	recorder := newRecordingTimer()

	uploader := services.NewUploader(store, 5, time.Second).WithTimer(recorder)
	err := uploader.Upload(context.Background(), "latest.json", []byte("{}"), cloud.NoCacheJSON)

	assert.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, recorder.delays)
	assert.Equal(t, 5, store.WriteCount("latest.json"))
	assert.Equal(t, []byte("{}"), store.Get("latest.json").Data)
}

func TestUploadGivesUpAfterMaxAttempts(t *testing.T) {
	store := test.NewMemoryBlobStore()
	store.FailWrites("latest.json",
		test.RateLimitError(), test.RateLimitError(), test.RateLimitError(),
		test.RateLimitError(), test.RateLimitError(), test.RateLimitError())
	recorder := newRecordingTimer()

	uploader := services.NewUploader(store, 5, time.Second).WithTimer(recorder)
	err := uploader.Upload(context.Background(), "latest.json", []byte("{}"), cloud.NoCacheJSON)

	assert.Error(t, err)
	assert.True(t, cloud.IsRateLimited(err))
	assert.Equal(t, 5, store.WriteCount("latest.json"))
	assert.Len(t, recorder.delays, 4)
	assert.Nil(t, store.Get("latest.json"))
}

func TestUploadDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("permission denied")
	store := test.NewMemoryBlobStore()
	store.FailWrites("latest.json", boom)
	recorder := newRecordingTimer()

	uploader := services.NewUploader(store, 5, time.Second).WithTimer(recorder)
	err := uploader.Upload(context.Background(), "latest.json", []byte("{}"), cloud.NoCacheJSON)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.WriteCount("latest.json"))
	assert.Empty(t, recorder.delays)
}

func TestUploadStopsWhenContextIsCancelled(t *testing.T) {
	store := test.NewMemoryBlobStore()
	store.FailWrites("latest.json", test.RateLimitError())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uploader := services.NewUploader(store, 5, time.Hour)
	err := uploader.Upload(ctx, "latest.json", []byte("{}"), cloud.NoCacheJSON)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, store.WriteCount("latest.json"))
}

func TestUploadSingleAttemptDoesNotWait(t *testing.T) {
	store := test.NewMemoryBlobStore()
	store.FailWrites("latest.json", test.RateLimitError())
	recorder := newRecordingTimer()

	uploader := services.NewUploader(store, 1, time.Second).WithTimer(recorder)
	err := uploader.Upload(context.Background(), "latest.json", []byte("{}"), cloud.NoCacheJSON)

	assert.True(t, cloud.IsRateLimited(err))
	assert.Equal(t, 1, store.WriteCount("latest.json"))
	assert.Empty(t, recorder.delays)
}
