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

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

// Uploader writes objects and retries rate-limit rejections with exponential
// backoff. Any other error is returned at once.
type Uploader struct {
	store       cloud.BlobStore
	maxAttempts int
	baseDelay   time.Duration
	timer       backoff.Timer
}

// NewUploader creates an Uploader making at most maxAttempts writes per
// object, waiting baseDelay*2^attempt between them.
func NewUploader(store cloud.BlobStore, maxAttempts int, baseDelay time.Duration) *Uploader {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Uploader{store: store, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// WithTimer replaces the timer used to wait between attempts.
func (u *Uploader) WithTimer(timer backoff.Timer) *Uploader {
	u.timer = timer
	return u
}

// policy is built per upload; an ExponentialBackOff is stateful.
func (u *Uploader) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = u.baseDelay
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = 24 * time.Hour
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(u.maxAttempts-1)), ctx)
}

// Upload writes data to name.
//
// Inputs:
//   - ctx: Cancelling it aborts a pending backoff.
//   - name: The object name.
//   - data: The content.
//   - opts: Metadata applied to the object.
//
// Outputs:
//   - error: The last rate-limit rejection once the attempts are used up, or
//     the first error of any other kind.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte, opts cloud.WriteOptions) error {
	attempt := 0
	write := func() error {
		attempt++
		err := u.store.Write(ctx, name, data, opts)
		if err != nil && !cloud.IsRateLimited(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	retrying := func(err error, delay time.Duration) {
		telemetry.UploadRetries.Inc()
		slog.WarnContext(ctx, "upload rate limited; retrying",
			"object", name, "attempt", attempt, "delay", delay.String(), "error", err)
	}

	err := backoff.RetryNotifyWithTimer(write, u.policy(ctx), retrying, u.timer)
	if err != nil && cloud.IsRateLimited(err) {
		return fmt.Errorf("upload of %s still rate limited after %d attempts: %w", name, attempt, err)
	}
	return err
}
