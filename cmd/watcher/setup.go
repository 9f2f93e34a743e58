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

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/joho/godotenv"
)

// SetupOS loads a .env file when one is present and points the configuration
// loader at ./configs with the "local" runtime, unless the environment
// already says otherwise.
func SetupOS() (err error) {
	if err = godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig returns the defaults overlaid with the TOML configuration.
func GetConfig() (*cloud.Config, error) {
	if err := SetupOS(); err != nil {
		return nil, err
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LogLevel reads LOG_LEVEL (debug, info, warn, error); info by default.
func LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// InitState creates the cloud clients the pipelines run on.
func InitState(ctx context.Context, config *cloud.Config) (*cloud.ServiceClients, error) {
	return cloud.NewCloudServiceClients(ctx, config)
}
