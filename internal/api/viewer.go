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

// Package api defines the HTTP routes of the viewer backend: the
// merge-complete callback the polling pipeline calls after every publish, and
// the read side the web viewer uses to fetch the latest merged document.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Viewer holds the state behind the viewer routes.
type Viewer struct {
	store         cloud.BlobStore
	latestPath    string
	watchLatest   string
	now           func() time.Time
	mu            sync.Mutex
	mergeCount    int64
	lastMergeTime time.Time
}

// NewViewer creates a Viewer reading the latest documents named in config.
func NewViewer(config *cloud.Config, store cloud.BlobStore) *Viewer {
	return &Viewer{
		store:       store,
		latestPath:  config.Poller.LatestPath(),
		watchLatest: config.Watcher.LatestObject,
		now:         time.Now,
	}
}

// Status is the body of GET /api/v1/status.
type Status struct {
	MergeCount    int64      `json:"merge_count"`
	LastMergeTime *time.Time `json:"last_merge_time,omitempty"`
}

// Status returns the merge-complete count and the time of the last one.
func (v *Viewer) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := Status{MergeCount: v.mergeCount}
	if !v.lastMergeTime.IsZero() {
		last := v.lastMergeTime
		out.LastMergeTime = &last
	}
	return out
}

func (v *Viewer) recordMerge() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mergeCount++
	v.lastMergeTime = v.now()
}

// MergeComplete handles GET /merge-complete.
func (v *Viewer) MergeComplete(c *gin.Context) {
	v.recordMerge()
	telemetry.MergeCompleteCallbacks.Inc()
	slog.InfoContext(c.Request.Context(), "merge complete")
	c.String(http.StatusOK, "ok")
}

// LatestAnnotations handles GET /api/v1/annotations/latest. The query
// parameter source=watch selects the watch pipeline's document.
func (v *Viewer) LatestAnnotations(c *gin.Context) {
	name := v.latestPath
	if c.Query("source") == "watch" {
		name = v.watchLatest
	}
	data, err := v.store.Read(c.Request.Context(), name)
	if errors.Is(err, cloud.ErrObjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no merged document yet"})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to read latest document", "object", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read latest document"})
		return
	}
	c.Header("Cache-Control", cloud.CacheControlNoCache)
	c.Data(http.StatusOK, cloud.ContentTypeJSON, data)
}

// NewRouter builds the gin engine serving every viewer route.
//
// Inputs:
//   - v: The viewer state.
//   - serviceName: The service name reported by the tracing middleware.
//
// Outputs:
//   - *gin.Engine: Ready to be used as an http.Handler.
func NewRouter(v *Viewer, serviceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.Default())

	r.GET("/merge-complete", v.MergeComplete)
	Operations(&r.RouterGroup)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/annotations/latest", v.LatestAnnotations)
		Dashboard(apiV1, v)
	}
	return r
}

// Operations registers /healthz and /metrics.
func Operations(r *gin.RouterGroup) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
}

// NewOperationsRouter builds the engine the poller and watcher expose for
// health checks and Prometheus scraping.
func NewOperationsRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	Operations(&r.RouterGroup)
	return r
}
