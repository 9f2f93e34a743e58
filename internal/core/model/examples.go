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

// Package model. This file, `examples.go`, provides small but realistic
// example documents in the shape produced by the Video Intelligence API and
// by the moderation pipeline. They back the test suites and document the
// formats this service exchanges.
package model

// ExampleAnalysisJSON is a trimmed Video Intelligence output document.
const ExampleAnalysisJSON = `{
  "annotation_results": [
    {
      "input_uri": "/highbuff_developer_seoul/visualize-input/clip2.mp4",
      "segment": {"start_time_offset": {}, "end_time_offset": {"seconds": 12, "nanos": 480000000}},
      "face_detection_annotations": [
        {"tracks": [{"segment": {"start_time_offset": {"nanos": 120000000}}, "confidence": 0.9817304}], "thumbnail": "AAAA"}
      ],
      "object_annotations": [
        {"entity": {"entity_id": "/m/01g317", "description": "person", "language_code": "en-US"}, "confidence": 0.93110347, "track_id": 9007199254740993}
      ],
      "explicit_annotation": {"frames": []}
    },
    {
      "input_uri": "/highbuff_developer_seoul/visualize-input/clip2.mp4",
      "speech_transcriptions": [{"alternatives": [{"transcript": "hello", "confidence": 0.87}], "language_code": "en-us"}]
    }
  ]
}`

// ExampleModerationJSON is a moderation pipeline document. Only its
// explicit_annotation field matters to the primary-augmented merge.
const ExampleModerationJSON = `{
  "explicit_annotation": {
    "frames": [
      {"time_offset": {"seconds": 1}, "pornography_likelihood": "VERY_UNLIKELY"},
      {"time_offset": {"seconds": 2, "nanos": 500000000}, "pornography_likelihood": "POSSIBLE"}
    ]
  },
  "job_id": "moderation-0001"
}`

// GetExampleAnalysisDocument parses ExampleAnalysisJSON.
func GetExampleAnalysisDocument() AnnotationDocument {
	return mustParse(ExampleAnalysisJSON)
}

// GetExampleModerationDocument parses ExampleModerationJSON.
func GetExampleModerationDocument() AnnotationDocument {
	return mustParse(ExampleModerationJSON)
}

func mustParse(in string) AnnotationDocument {
	doc, err := ParseAnnotationDocument([]byte(in))
	if err != nil {
		panic(err)
	}
	return doc
}
