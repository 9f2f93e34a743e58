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

// Command poller runs the polling pipeline: it watches the input prefix for
// the newest video, analyzes it, merges the result with the moderation
// output and publishes the merged document. Pub/Sub object notifications,
// when configured, feed the same pipeline.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-annotate/internal/api"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/workflow"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

func main() {
	config, err := GetConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logCloser, err := telemetry.SetupLogging(config.Application.LogFile, LogLevel())
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdown(context.Background()) }()

	clients, err := InitState(ctx, config)
	if err != nil {
		slog.Error("Failed to initialize cloud clients", "error", err)
		os.Exit(1)
	}
	defer clients.Close()

	processed, err := services.NewProcessedStore(ctx, config.ProcessedStore, clients.BigQueryClient)
	if err != nil {
		slog.Error("Failed to initialize processed store", "error", err)
		os.Exit(1)
	}

	pipeline, err := workflow.NewVideoAnnotationWorkflow(config, workflow.NewDependencies(config, clients))
	if err != nil {
		slog.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}
	processor := workflow.NewVideoProcessor(processed, pipeline)

	SetupListeners(ctx, config, clients, processor)

	if addr := config.Application.MetricsAddress; addr != "" {
		gin.SetMode(gin.ReleaseMode)
		go func() {
			if err := api.Serve(ctx, addr, api.NewOperationsRouter()); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	poller := workflow.NewLatestVideoPoller(config, clients.BlobStore, processor)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Poller stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Poller exiting")
}
