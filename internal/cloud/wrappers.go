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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements a decorator around a BlobStore that paces writes with
// a token bucket. Cloud Storage allows roughly one mutation per second on a
// single object, and the "latest" document is rewritten by every publish.
//
// Structs:
//   - QuotaAwareBlobStore: Wraps a BlobStore and adds a write limiter.
//
// Functions:
//   - NewQuotaAwareBlobStore: Constructor for the decorator.
package cloud

import (
	"context"

	"golang.org/x/time/rate"
)

// QuotaAwareBlobStore is a decorator that embeds a BlobStore and overrides
// Write to wait on a rate limiter. Reads and listings pass straight through.
type QuotaAwareBlobStore struct {
	BlobStore
	limiter *rate.Limiter
}

// NewQuotaAwareBlobStore wraps store with a limiter allowing writesPerSecond
// sustained writes and bursts of burst. A non-positive rate disables pacing.
//
// Inputs:
//   - store: The BlobStore to wrap.
//   - writesPerSecond: Sustained writes per second.
//   - burst: The token bucket size; values below one are raised to one.
//
// Outputs:
//   - *QuotaAwareBlobStore: The decorated store.
func NewQuotaAwareBlobStore(store BlobStore, writesPerSecond float64, burst int) *QuotaAwareBlobStore {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(writesPerSecond)
	if writesPerSecond <= 0 {
		limit = rate.Inf
	}
	return &QuotaAwareBlobStore{
		BlobStore: store,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// Write blocks until the limiter grants a token, then delegates. A cancelled
// context aborts the wait.
func (q *QuotaAwareBlobStore) Write(ctx context.Context, name string, data []byte, opts WriteOptions) error {
	if err := q.limiter.Wait(ctx); err != nil {
		return err
	}
	return q.BlobStore.Write(ctx, name, data, opts)
}
