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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and the clients used to talk to Google Cloud.
//
// This file centralizes all configuration-related structs. A Config is built
// once at process start by NewConfig (which fills in the defaults every
// deployment of this service has used so far), overlaid with the TOML files
// found by LoadConfig, and then passed by pointer to every component. No
// component reads configuration from package-level state.
//
// Structs:
//   - Storage: Bucket name, emulator endpoint and write pacing.
//   - Upload: Retry budget for storage writes.
//   - AnalysisProfile: Features and video context sent to Video Intelligence.
//   - PollerConfig: Paths and timing for the polling controller.
//   - WatcherConfig: Paths for the directory-watch controller.
//   - Notifications: Endpoints of the best-effort HTTP collaborators.
//   - ProcessedStoreConfig: Backend of the processed-video set.
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Server: Viewer backend settings.
//   - Config: The top-level struct that aggregates all other configuration structs.
package cloud

import (
	"path"
	"time"
)

// Merge strategy names accepted in configuration.
const (
	MergeStrategyPrimaryAugmented = "primary-augmented"
	MergeStrategySecondaryWrapped = "secondary-wrapped"
)

// Processed store backends accepted in configuration.
const (
	ProcessedStoreMemory   = "memory"
	ProcessedStoreBigQuery = "bigquery"
)

// Storage represents the configuration for the storage bucket.
type Storage struct {
	Bucket            string  `toml:"bucket"`               // The bucket holding inputs and all outputs.
	InputPrefix       string  `toml:"input_prefix"`         // Prefix under which videos are uploaded.
	GCSFuseMountPoint string  `toml:"gcs_fuse_mount_point"` // Where the bucket is mounted locally, if at all.
	Endpoint          string  `toml:"endpoint"`             // Optional storage endpoint, used for emulators.
	WritesPerSecond   float64 `toml:"writes_per_second"`    // Sustained write rate allowed by the write limiter.
	WriteBurst        int     `toml:"write_burst"`          // Burst size of the write limiter.
}

// Upload holds the retry budget applied to every storage write.
type Upload struct {
	MaxAttempts        int `toml:"max_attempts"`          // Total attempts, including the first.
	BaseDelayInSeconds int `toml:"base_delay_in_seconds"` // Delay before the first retry; doubles each attempt.
}

// BaseDelay returns the base retry delay as a duration.
func (u Upload) BaseDelay() time.Duration {
	return time.Duration(u.BaseDelayInSeconds) * time.Second
}

// AnalysisProfile is the feature list and video context of one kind of
// analysis submission.
type AnalysisProfile struct {
	Features                   []string `toml:"features"`
	LanguageCode               string   `toml:"language_code"`
	EnableAutomaticPunctuation bool     `toml:"enable_automatic_punctuation"`
	PersonBoundingBoxes        bool     `toml:"person_bounding_boxes"`
	PersonAttributes           bool     `toml:"person_attributes"`
	PersonPoseLandmarks        bool     `toml:"person_pose_landmarks"`
	FaceBoundingBoxes          bool     `toml:"face_bounding_boxes"`
	FaceAttributes             bool     `toml:"face_attributes"`
	TimeoutInSeconds           int      `toml:"timeout_in_seconds"`
}

// Timeout returns the blocking wait budget of a submission.
func (a AnalysisProfile) Timeout() time.Duration {
	return time.Duration(a.TimeoutInSeconds) * time.Second
}

// PollerConfig configures the polling controller and its workflow.
type PollerConfig struct {
	IntervalInSeconds      int             `toml:"interval_in_seconds"`
	VideoExtensions        []string        `toml:"video_extensions"`
	AnalysisOutputPrefix   string          `toml:"analysis_output_prefix"`   // Raw analysis JSON, named <stem>-<token>.json.
	ModerationOutputPrefix string          `toml:"moderation_output_prefix"` // Moderation JSON, matched by token.
	ArchivalPrefix         string          `toml:"archival_prefix"`          // merged_<token>.json lives here.
	LatestPrefix           string          `toml:"latest_prefix"`
	LatestFileName         string          `toml:"latest_file_name"`
	MergeStrategy          string          `toml:"merge_strategy"`
	Analysis               AnalysisProfile `toml:"analysis"`
}

// Interval returns the time between polls.
func (p PollerConfig) Interval() time.Duration {
	return time.Duration(p.IntervalInSeconds) * time.Second
}

// ArchivalPath returns the archival object name for a timestamp token.
func (p PollerConfig) ArchivalPath(token string) string {
	return p.ArchivalPrefix + "merged_" + token + ".json"
}

// LatestPath returns the object overwritten by every publish.
func (p PollerConfig) LatestPath() string {
	return p.LatestPrefix + p.LatestFileName
}

// WatcherConfig configures the directory-watch controller and its workflow.
type WatcherConfig struct {
	Directory            string          `toml:"directory"` // Local directory to watch; defaults to the input prefix under the fuse mount.
	VideoExtensions      []string        `toml:"video_extensions"`
	AnalysisOutputPrefix string          `toml:"analysis_output_prefix"` // Raw analysis JSON, named output-<stem>.json.
	ModerationObject     string          `toml:"moderation_object"`      // Fixed-name moderation document.
	LatestObject         string          `toml:"latest_object"`
	MergeStrategy        string          `toml:"merge_strategy"`
	Analysis             AnalysisProfile `toml:"analysis"`
}

// Notifications holds the endpoints of the HTTP collaborators.
type Notifications struct {
	MergeCompleteURL    string `toml:"merge_complete_url"`
	ModerationCreateURL string `toml:"moderation_create_url"`
	TimeoutInSeconds    int    `toml:"timeout_in_seconds"`
}

// Timeout returns the per-request timeout of the HTTP collaborators.
func (n Notifications) Timeout() time.Duration {
	return time.Duration(n.TimeoutInSeconds) * time.Second
}

// ProcessedStoreConfig selects where the processed-video set lives.
type ProcessedStoreConfig struct {
	Backend string `toml:"backend"` // "memory" or "bigquery".
	Dataset string `toml:"dataset"`
	Table   string `toml:"table"`
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Server holds the viewer backend settings.
type Server struct {
	Port int `toml:"port"`
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		EnableTelemetry bool   `toml:"enable_telemetry"`  // Export traces and metrics to Google Cloud.
		LogFile         string `toml:"log_file"`          // Optional file receiving a copy of the logs.
		MetricsAddress  string `toml:"metrics_address"`   // Where the poller and watcher expose /metrics; empty disables it.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	Upload             Upload                       `toml:"upload"`
	Poller             PollerConfig                 `toml:"poller"`
	Watcher            WatcherConfig                `toml:"watcher"`
	Notifications      Notifications                `toml:"notifications"`
	ProcessedStore     ProcessedStoreConfig         `toml:"processed_store"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name (e.g., "VideoUploads").
	Server             Server                       `toml:"server"`
}

// NewConfig is a constructor function that creates a new, initialized Config
// instance holding the defaults. Values decoded from TOML later overwrite the
// fields they name and leave the others untouched.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with defaults and initialized maps.
func NewConfig() *Config {
	config := &Config{
		Storage: Storage{
			Bucket:            "highbuff_developer_seoul",
			InputPrefix:       "visualize-input/",
			GCSFuseMountPoint: "/mnt/gcs",
			WritesPerSecond:   1,
			WriteBurst:        2,
		},
		Upload: Upload{
			MaxAttempts:        5,
			BaseDelayInSeconds: 1,
		},
		Poller: PollerConfig{
			IntervalInSeconds:      5,
			VideoExtensions:        []string{".mp4"},
			AnalysisOutputPrefix:   "temp-output-json-files/",
			ModerationOutputPrefix: "visualize-aws-output-files/",
			ArchivalPrefix:         "visualize-final-output-files/",
			LatestPrefix:           "visualize-view-final-output-files/",
			LatestFileName:         "final_output.json",
			MergeStrategy:          MergeStrategyPrimaryAugmented,
			Analysis: AnalysisProfile{
				Features:                   []string{"FACE_DETECTION", "OBJECT_TRACKING", "EXPLICIT_CONTENT_DETECTION"},
				LanguageCode:               "en-US",
				EnableAutomaticPunctuation: true,
				PersonBoundingBoxes:        true,
				PersonAttributes:           false,
				PersonPoseLandmarks:        true,
				FaceBoundingBoxes:          true,
				FaceAttributes:             true,
				TimeoutInSeconds:           1800,
			},
		},
		Watcher: WatcherConfig{
			VideoExtensions:      []string{".3gp", ".avi", ".mov", ".mp4", ".m4v", ".mpeg", ".mpg", ".wmv"},
			AnalysisOutputPrefix: "visualize-aws-output/",
			ModerationObject:     "visualize-aws-output/moderation_result.json",
			LatestObject:         "visualize-final-output-files/moderation_result.json",
			MergeStrategy:        MergeStrategySecondaryWrapped,
			Analysis: AnalysisProfile{
				Features:                   []string{"FACE_DETECTION", "OBJECT_TRACKING"},
				LanguageCode:               "en-US",
				EnableAutomaticPunctuation: true,
				PersonBoundingBoxes:        true,
				PersonAttributes:           false,
				PersonPoseLandmarks:        true,
				FaceBoundingBoxes:          true,
				FaceAttributes:             true,
				TimeoutInSeconds:           1800,
			},
		},
		Notifications: Notifications{
			MergeCompleteURL:    "http://localhost:8080/merge-complete",
			ModerationCreateURL: "http://localhost:5555/api/v1/moderation/create",
			TimeoutInSeconds:    10,
		},
		ProcessedStore: ProcessedStoreConfig{
			Backend: ProcessedStoreMemory,
			Dataset: "video_annotations",
			Table:   "processed_videos",
		},
		TopicSubscriptions: make(map[string]TopicSubscription),
		Server:             Server{Port: 8080},
	}
	config.Application.Name = "video-annotate"
	config.Application.GoogleLocation = "us-central1"
	return config
}

// WatchDirectory returns the directory the watcher observes: the configured
// directory, or the input prefix under the bucket's fuse mount.
func (c *Config) WatchDirectory() string {
	if c.Watcher.Directory != "" {
		return c.Watcher.Directory
	}
	return path.Join(c.Storage.GCSFuseMountPoint, c.Storage.Bucket, c.Storage.InputPrefix)
}
