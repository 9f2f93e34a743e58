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

// Command watcher runs the watch pipeline: it observes the input prefix
// through a gcsfuse mount and analyzes, merges and publishes every video file
// created there.
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

	pipeline, err := workflow.NewWatchAnnotationWorkflow(config, workflow.NewDependencies(config, clients))
	if err != nil {
		slog.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	if addr := config.Application.MetricsAddress; addr != "" {
		gin.SetMode(gin.ReleaseMode)
		go func() {
			if err := api.Serve(ctx, addr, api.NewOperationsRouter()); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	watcher := workflow.NewDirectoryWatcher(config, pipeline)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Watcher stopped", "error", err, "directory", watcher.Directory())
		os.Exit(1)
	}
	slog.Info("Watcher exiting")
}
