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

package model

import "time"

// Feature names a Video Intelligence feature. Values match the API enum names.
type Feature string

const (
	FeatureFaceDetection            Feature = "FACE_DETECTION"
	FeatureObjectTracking           Feature = "OBJECT_TRACKING"
	FeatureExplicitContentDetection Feature = "EXPLICIT_CONTENT_DETECTION"
	FeatureSpeechTranscription      Feature = "SPEECH_TRANSCRIPTION"
	FeaturePersonDetection          Feature = "PERSON_DETECTION"
	FeatureLabelDetection           Feature = "LABEL_DETECTION"
	FeatureShotChangeDetection      Feature = "SHOT_CHANGE_DETECTION"
	FeatureTextDetection            Feature = "TEXT_DETECTION"
	FeatureLogoRecognition          Feature = "LOGO_RECOGNITION"
)

// SpeechTranscriptionOptions configures speech transcription in the video context.
type SpeechTranscriptionOptions struct {
	LanguageCode               string
	EnableAutomaticPunctuation bool
}

// PersonDetectionOptions configures person detection in the video context.
type PersonDetectionOptions struct {
	IncludeBoundingBoxes bool
	IncludeAttributes    bool
	IncludePoseLandmarks bool
}

// FaceDetectionOptions configures face detection in the video context.
type FaceDetectionOptions struct {
	IncludeBoundingBoxes bool
	IncludeAttributes    bool
}

// AnalysisJob is one submission to the analysis backend. A nil options
// pointer leaves that part of the video context unset.
type AnalysisJob struct {
	ID                  string
	Video               *VideoObject
	InputURI            string
	OutputURI           string
	Features            []Feature
	SpeechTranscription *SpeechTranscriptionOptions
	PersonDetection     *PersonDetectionOptions
	FaceDetection       *FaceDetectionOptions
	Timeout             time.Duration
}
