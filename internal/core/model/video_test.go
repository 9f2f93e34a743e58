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

package model_test

import (
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestNewVideoObject(t *testing.T) {
	created := time.Date(2024, 10, 11, 3, 4, 8, 0, time.UTC)
	video := model.NewVideoObject("highbuff_developer_seoul", "visualize-input/Clip2.MP4", created)

	assert.Equal(t, "Clip2.MP4", video.Name)
	assert.Equal(t, ".mp4", video.Extension)
	assert.Equal(t, "Clip2", video.Stem())
	assert.Equal(t, "gs://highbuff_developer_seoul/visualize-input/Clip2.MP4", video.URI())
	assert.Equal(t, created, video.Created)
}

func TestParseGCSURI(t *testing.T) {
	bucket, object, err := model.ParseGCSURI("gs://highbuff_developer_seoul/temp-output-json-files/clip2-20240101_120000.json")
	assert.NoError(t, err)
	assert.Equal(t, "highbuff_developer_seoul", bucket)
	assert.Equal(t, "temp-output-json-files/clip2-20240101_120000.json", object)

	for _, bad := range []string{"", "s3://b/o", "gs://bucket", "gs://bucket/", "gs:///object"} {
		_, _, err := model.ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}
