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

// Command server runs the viewer backend: it receives the merge-complete
// callback and serves the latest merged annotation document.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-annotate/internal/api"
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
	slog.Info("Logging initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdown(context.Background()) }()
	slog.Info("Tracing initialized")

	clients, err := InitState(ctx, config)
	if err != nil {
		slog.Error("Failed to initialize cloud clients", "error", err)
		os.Exit(1)
	}
	defer clients.Close()
	slog.Info("Initialized State")

	gin.SetMode(gin.ReleaseMode)
	viewer := api.NewViewer(config, clients.BlobStore)
	router := api.NewRouter(viewer, config.Application.Name+"-viewer")

	if err := api.Serve(ctx, fmt.Sprintf(":%d", config.Server.Port), router); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}
