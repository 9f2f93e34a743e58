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

// Package telemetry. This file declares the Prometheus counters scraped from
// /metrics. They complement the OpenTelemetry command counters, which are only
// exported when Cloud Monitoring is enabled.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "video_annotate"

var (
	// VideosDetected counts videos handed to a workflow, by trigger.
	VideosDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "videos_detected_total",
		Help:      "Videos detected by a trigger controller.",
	}, []string{"trigger"})

	// Analyses counts analysis submissions, by result class.
	Analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Video Intelligence submissions by outcome.",
	}, []string{"outcome"})

	// Publishes counts publish attempts, by outcome.
	Publishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publishes_total",
		Help:      "Merged document publishes by outcome.",
	}, []string{"outcome"})

	// UploadRetries counts storage writes retried after a rate-limit rejection.
	UploadRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_retries_total",
		Help:      "Storage writes retried after a rate-limit rejection.",
	})

	// Notifications counts best-effort HTTP calls, by target and outcome.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Best-effort HTTP calls by target and outcome.",
	}, []string{"target", "outcome"})

	// TimestampCollisions counts tokens shared by more than one object.
	TimestampCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timestamp_collisions_total",
		Help:      "Timestamp tokens carried by more than one object under a prefix.",
	})

	// MergeCompleteCallbacks counts callbacks received by the viewer backend.
	MergeCompleteCallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "merge_complete_callbacks_total",
		Help:      "merge-complete callbacks received.",
	})
)

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
