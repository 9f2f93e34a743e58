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

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-annotate/internal/testutil"
	"github.com/zeebo/assert"
)

func TestExtractTimestamp(t *testing.T) {
	cases := []struct {
		name  string
		token string
		ok    bool
	}{
		{"temp-output-json-files/foo-20240101_120000.json", "20240101_120000", true},
		{"20240101_120000.json", "20240101_120000", true},
		{"visualize-aws-output-files/moderation-20231231_235959-v2.json", "20231231_235959", true},
		{"a-20240101_120000-b-20250202_130000.json", "20240101_120000", true},
		{"clip-2024010112_000000.json", "24010112_000000", true},
		{"moderation_result.json", "", false},
		{"clip-2024011_120000.json", "", false},
		{"clip-20240101-120000.json", "", false},
	}
	for _, c := range cases {
		token, ok := services.ExtractTimestamp(c.name)
		assert.Equal(t, c.ok, ok)
		assert.Equal(t, c.token, token)
	}
}

func TestExtractTimestampAnywhereInName(t *testing.T) {
	token := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC).Format(services.TimestampLayout)
	assert.Equal(t, "20240309_070501", token)
	for _, name := range []string{token, "x" + token, token + ".json", "dir/sub/" + token + "_final.json", "merged_" + token + ".json"} {
		got, ok := services.ExtractTimestamp(name)
		assert.True(t, ok)
		assert.Equal(t, token, got)
	}
}

func TestBuildTimestampIndex(t *testing.T) {
	store := test.NewMemoryBlobStore()
	store.PutString("visualize-aws-output-files/a-20240101_120000.json", "{}")
	store.PutString("visualize-aws-output-files/notes.json", "{}")
	store.PutString("visualize-aws-output-files/d-20240202_010203.json", "{}")
	store.PutString("visualize-aws-output-files/b-20240101_120000.json", "{}")
	store.PutString("temp-output-json-files/e-20240303_030303.json", "{}")

	index, err := services.BuildTimestampIndex(context.Background(), store, "visualize-aws-output-files/")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(index.Objects))

	name, ok := index.Lookup("20240101_120000")
	assert.True(t, ok)
	assert.Equal(t, "visualize-aws-output-files/b-20240101_120000.json", name)

	name, ok = index.Lookup("20240202_010203")
	assert.True(t, ok)
	assert.Equal(t, "visualize-aws-output-files/d-20240202_010203.json", name)

	_, ok = index.Lookup("20240303_030303")
	assert.False(t, ok)

	assert.Equal(t, 1, len(index.Collisions))
	assert.DeepEqual(t, services.TimestampCollision{
		Token: "20240101_120000",
		Names: []string{
			"visualize-aws-output-files/a-20240101_120000.json",
			"visualize-aws-output-files/b-20240101_120000.json",
		},
	}, index.Collisions[0])
}

func TestBuildTimestampIndexListFailure(t *testing.T) {
	store := test.NewMemoryBlobStore()
	store.ListErr = context.DeadlineExceeded
	_, err := services.BuildTimestampIndex(context.Background(), store, "x/")
	assert.Error(t, err)
}
