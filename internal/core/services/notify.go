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

// Package services. This file, `notify.go`, holds the two fire-and-forget
// HTTP collaborators: the viewer's merge-complete callback and the
// moderation service trigger. Neither returns an error; failures are logged
// and counted.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Notifier announces a completed publish.
type Notifier interface {
	Notify(ctx context.Context)
}

// ModerationRequester asks the moderation service to process a video.
type ModerationRequester interface {
	RequestModeration(ctx context.Context, bucket string, objectKey string)
}

// NewHTTPClient returns a client that propagates trace context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

// HTTPMergeCompleteNotifier issues GET <url>.
type HTTPMergeCompleteNotifier struct {
	url    string
	client *http.Client
}

// NewHTTPMergeCompleteNotifier creates a notifier for url.
func NewHTTPMergeCompleteNotifier(url string, client *http.Client) *HTTPMergeCompleteNotifier {
	return &HTTPMergeCompleteNotifier{url: url, client: client}
}

// Notify calls the endpoint once. Anything but 200 is logged.
func (n *HTTPMergeCompleteNotifier) Notify(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url, nil)
	if err != nil {
		n.record(ctx, "error", slog.String("error", err.Error()))
		return
	}
	resp, err := n.client.Do(req)
	if err != nil {
		n.record(ctx, "error", slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		n.record(ctx, "rejected", slog.Int("status", resp.StatusCode))
		return
	}
	telemetry.Notifications.WithLabelValues("merge_complete", "ok").Inc()
	slog.InfoContext(ctx, "merge-complete notification sent", "url", n.url)
}

func (n *HTTPMergeCompleteNotifier) record(ctx context.Context, outcome string, attr slog.Attr) {
	telemetry.Notifications.WithLabelValues("merge_complete", outcome).Inc()
	slog.WarnContext(ctx, "merge-complete notification failed", slog.String("url", n.url), attr)
}

// moderationRequest is the body expected by the moderation service.
type moderationRequest struct {
	BucketName string `json:"bucketName"`
	ObjectKey  string `json:"objectKey"`
}

// HTTPModerationRequester issues POST <url> with {bucketName, objectKey}.
type HTTPModerationRequester struct {
	url    string
	client *http.Client
}

// NewHTTPModerationRequester creates a requester for url.
func NewHTTPModerationRequester(url string, client *http.Client) *HTTPModerationRequester {
	return &HTTPModerationRequester{url: url, client: client}
}

// RequestModeration posts the request once. Any 2xx counts as accepted.
func (m *HTTPModerationRequester) RequestModeration(ctx context.Context, bucket string, objectKey string) {
	body, err := json.Marshal(moderationRequest{BucketName: bucket, ObjectKey: objectKey})
	if err != nil {
		m.record(ctx, "error", objectKey, slog.String("error", err.Error()))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		m.record(ctx, "error", objectKey, slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.record(ctx, "error", objectKey, slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.record(ctx, "rejected", objectKey, slog.Int("status", resp.StatusCode))
		return
	}
	telemetry.Notifications.WithLabelValues("moderation", "ok").Inc()
	slog.InfoContext(ctx, "moderation requested", "bucket", bucket, "object", objectKey)
}

func (m *HTTPModerationRequester) record(ctx context.Context, outcome string, objectKey string, attr slog.Attr) {
	telemetry.Notifications.WithLabelValues("moderation", outcome).Inc()
	slog.WarnContext(ctx, "moderation request failed", slog.String("url", m.url), slog.String("object", objectKey), attr)
}
