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

// Package test provides utility functions and mock data to support the application's
// test suite. It helps in setting up a consistent test environment, loading
// test-specific configurations, and providing sample data for workflows and services.
package test

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
)

// StateManager caches the test configuration so the TOML files are read once
// per test binary.
type StateManager struct {
	once   sync.Once
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test immediately when err is not nil.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// GetTestVideoMessageText returns a GCS OBJECT_FINALIZE notification for
// visualize-input/clip2.mp4 in the default bucket.
//
// Returns:
//   - A string containing the JSON payload of a GCS notification.
func GetTestVideoMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "highbuff_developer_seoul/visualize-input/clip2.mp4/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/highbuff_developer_seoul/o/visualize-input%2Fclip2.mp4",
  "name": "visualize-input/clip2.mp4",
  "bucket": "highbuff_developer_seoul",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2024-10-11T03:04:08.672Z",
  "size": "259348037",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/highbuff_developer_seoul/o/visualize-input%2Fclip2.mp4?generation=1728615848664286&alt=media",
  "metadata": { "touch": "18" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}

// GetTestOutputMessageText returns a notification for an object outside the
// input prefix.
func GetTestOutputMessageText() string {
	return `{
  "kind": "storage#object",
  "name": "visualize-final-output-files/merged_20240101_120000.json",
  "bucket": "highbuff_developer_seoul",
  "contentType": "application/json",
  "timeCreated": "2024-10-11T03:04:08.672Z"
}`
}

// ConfigDir returns the absolute path of the repository's configs directory.
func ConfigDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs")
}

// SetupOS points the configuration loader at the repository's configs
// directory and the "test" runtime.
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	if err = os.Setenv(cloud.EnvConfigFilePrefix, ConfigDir()); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig is a singleton accessor for the test configuration: the defaults
// overlaid with configs/.env.toml and configs/.env.test.toml.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	state.once.Do(func() {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	})
	return state.config
}

// NewTestConfig returns a fresh default configuration with no retry delay,
// safe for a test to modify.
func NewTestConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Upload.BaseDelayInSeconds = 0
	config.Storage.WritesPerSecond = 0
	return config
}
