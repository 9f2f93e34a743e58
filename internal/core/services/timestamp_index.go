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

// Package services contains the business logic shared by the workflows.
// This file, `timestamp_index.go`, correlates the analysis output with the
// moderation output. Both pipelines embed a YYYYMMDD_HHMMSS token in the names
// of the files they write, and that token is the only link between them.
package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/telemetry"
)

// TimestampLayout formats a time as a timestamp token.
const TimestampLayout = "20060102_150405"

// ErrNoTimestamp is returned when an object name carries no timestamp token.
var ErrNoTimestamp = errors.New("no timestamp token in object name")

var timestampPattern = regexp.MustCompile(`\d{8}_\d{6}`)

// ExtractTimestamp returns the first 8-digit, underscore, 6-digit substring
// of name.
func ExtractTimestamp(name string) (string, bool) {
	token := timestampPattern.FindString(name)
	return token, token != ""
}

// TimestampCollision lists every object that carried the same token, in
// listing order. The last one is the one the index kept.
type TimestampCollision struct {
	Token string
	Names []string
}

// TimestampIndex maps timestamp tokens to object names under one prefix.
type TimestampIndex struct {
	Prefix     string
	Objects    map[string]string
	Collisions []TimestampCollision
}

// Lookup returns the object carrying token.
func (i *TimestampIndex) Lookup(token string) (string, bool) {
	name, ok := i.Objects[token]
	return name, ok
}

// BuildTimestampIndex lists prefix and indexes every object whose name
// carries a token. Objects without one are skipped. When several objects
// share a token the later-listed one wins; storage listing order is not a
// time order, so every such case is logged and recorded in Collisions.
//
// Inputs:
//   - ctx: The request context.
//   - store: The bucket to list.
//   - prefix: The prefix to list.
//
// Outputs:
//   - *TimestampIndex: The token map and its collisions.
//   - error: A listing failure.
func BuildTimestampIndex(ctx context.Context, store cloud.BlobStore, prefix string) (*TimestampIndex, error) {
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	index := &TimestampIndex{Prefix: prefix, Objects: make(map[string]string)}
	seen := make(map[string][]string)
	order := make([]string, 0)
	for _, object := range objects {
		token, ok := ExtractTimestamp(object.Name)
		if !ok {
			continue
		}
		if _, dup := seen[token]; !dup {
			order = append(order, token)
		}
		seen[token] = append(seen[token], object.Name)
		index.Objects[token] = object.Name
	}

	for _, token := range order {
		names := seen[token]
		if len(names) < 2 {
			continue
		}
		index.Collisions = append(index.Collisions, TimestampCollision{Token: token, Names: names})
		telemetry.TimestampCollisions.Inc()
		slog.WarnContext(ctx, "timestamp token shared by several objects; using the last listed",
			"prefix", prefix, "token", token, "objects", names, "selected", names[len(names)-1])
	}
	return index, nil
}
