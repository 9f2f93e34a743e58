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

package cloud_test

import (
	"testing"
	"time"

	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAnnotateVideoRequest(t *testing.T) {
	job := &model.AnalysisJob{
		InputURI:  "gs://highbuff_developer_seoul/visualize-input/clip2.mp4",
		OutputURI: "gs://highbuff_developer_seoul/temp-output-json-files/clip2-20240101_120000.json",
		Features: []model.Feature{
			model.FeatureFaceDetection,
			model.FeatureObjectTracking,
			model.FeatureExplicitContentDetection,
		},
		SpeechTranscription: &model.SpeechTranscriptionOptions{LanguageCode: "en-US", EnableAutomaticPunctuation: true},
		PersonDetection:     &model.PersonDetectionOptions{IncludeBoundingBoxes: true, IncludePoseLandmarks: true},
		FaceDetection:       &model.FaceDetectionOptions{IncludeBoundingBoxes: true, IncludeAttributes: true},
		Timeout:             time.Minute,
	}

	req, err := cloud.BuildAnnotateVideoRequest(job)
	require.NoError(t, err)

	assert.Equal(t, job.InputURI, req.InputUri)
	assert.Equal(t, job.OutputURI, req.OutputUri)
	assert.Equal(t, []videointelligencepb.Feature{
		videointelligencepb.Feature_FACE_DETECTION,
		videointelligencepb.Feature_OBJECT_TRACKING,
		videointelligencepb.Feature_EXPLICIT_CONTENT_DETECTION,
	}, req.Features)

	require.NotNil(t, req.VideoContext)
	assert.Equal(t, "en-US", req.VideoContext.SpeechTranscriptionConfig.LanguageCode)
	assert.True(t, req.VideoContext.SpeechTranscriptionConfig.EnableAutomaticPunctuation)
	assert.True(t, req.VideoContext.PersonDetectionConfig.IncludePoseLandmarks)
	assert.False(t, req.VideoContext.PersonDetectionConfig.IncludeAttributes)
	assert.True(t, req.VideoContext.FaceDetectionConfig.IncludeAttributes)
}

func TestBuildAnnotateVideoRequestWithoutContext(t *testing.T) {
	req, err := cloud.BuildAnnotateVideoRequest(&model.AnalysisJob{
		InputURI: "gs://b/v.mp4",
		Features: []model.Feature{model.FeatureLabelDetection},
	})
	require.NoError(t, err)
	assert.Nil(t, req.VideoContext)
	assert.Empty(t, req.OutputUri)
}

func TestBuildAnnotateVideoRequestRejectsUnknownFeature(t *testing.T) {
	_, err := cloud.BuildAnnotateVideoRequest(&model.AnalysisJob{
		InputURI: "gs://b/v.mp4",
		Features: []model.Feature{"FEATURE_UNSPECIFIED"},
	})
	assert.Error(t, err)

	_, err = cloud.BuildAnnotateVideoRequest(&model.AnalysisJob{
		InputURI: "gs://b/v.mp4",
		Features: []model.Feature{"CELEBRITY_RECOGNITION"},
	})
	assert.Error(t, err)
}
