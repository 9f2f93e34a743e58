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

// Package model. This file, `transient.go`, holds the values that only live
// while one video moves through a workflow: the publish request built by the
// merge step and the result reported back to the controller. Nothing here is
// persisted.
package model

import "fmt"

// PublishOutcome is the result class of one publish attempt.
type PublishOutcome string

const (
	// PublishOutcomePublished means every write succeeded.
	PublishOutcomePublished PublishOutcome = "published"
	// PublishOutcomeAlreadyMerged means the archival object already existed
	// and nothing was written.
	PublishOutcomeAlreadyMerged PublishOutcome = "already_merged"
	// PublishOutcomeFailed means a read, merge or write failed.
	PublishOutcomeFailed PublishOutcome = "failed"
)

// PublishRequest describes where a merged document goes.
type PublishRequest struct {
	Key          string             // Timestamp token or video name identifying the merge.
	ArchivalPath string             // Per-key object; empty to skip the archival write.
	LatestPath   string             // Fixed object overwritten on every publish.
	Guard        bool               // Skip everything when ArchivalPath already exists.
	Notify       bool               // Fire the completion notification after the writes.
	Document     AnnotationDocument // The merged document.
}

// PublishResult is what a publish reports back. Err is set only for
// PublishOutcomeFailed.
type PublishResult struct {
	Key          string         `json:"key"`
	Outcome      PublishOutcome `json:"outcome"`
	ArchivalPath string         `json:"archival_path,omitempty"`
	LatestPath   string         `json:"latest_path,omitempty"`
	Notified     bool           `json:"notified"`
	Err          error          `json:"-"`
}

func (r *PublishResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s %s: %v", r.Key, r.Outcome, r.Err)
	}
	return fmt.Sprintf("%s %s", r.Key, r.Outcome)
}
