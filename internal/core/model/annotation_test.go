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
	"encoding/json"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"github.com/zeebo/assert"
)

func TestParseAnnotationDocument(t *testing.T) {
	doc, err := model.ParseAnnotationDocument([]byte(model.ExampleAnalysisJSON))
	assert.NoError(t, err)

	results, ok := doc.AnnotationResults()
	assert.True(t, ok)
	assert.Equal(t, 2, len(results))
}

func TestParseAnnotationDocumentRejectsNonObjects(t *testing.T) {
	_, err := model.ParseAnnotationDocument([]byte(`[1,2,3]`))
	assert.True(t, errors.Is(err, model.ErrNotAnObject))

	_, err = model.ParseAnnotationDocument([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)

	_, err = model.ParseAnnotationDocument([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = model.ParseAnnotationDocument(nil)
	assert.Error(t, err)
}

func TestParseJSONValueAcceptsAnyType(t *testing.T) {
	value, err := model.ParseJSONValue([]byte(`[{"frame":1}]`))
	assert.NoError(t, err)
	assert.DeepEqual(t, []interface{}{map[string]interface{}{"frame": json.Number("1")}}, value)

	value, err = model.ParseJSONValue([]byte(`"POSSIBLE"`))
	assert.NoError(t, err)
	assert.Equal(t, "POSSIBLE", value)

	value, err = model.ParseJSONValue([]byte(`null`))
	assert.NoError(t, err)
	assert.True(t, value == nil)

	_, err = model.ParseJSONValue([]byte(`1 2`))
	assert.Error(t, err)
}

func TestNumbersSurviveRoundTrip(t *testing.T) {
	input := `{"track_id":9007199254740993,"confidence":0.93110347,"nested":[{"n":1e-7}]}`
	doc, err := model.ParseAnnotationDocument([]byte(input))
	assert.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), doc["track_id"])

	out, err := doc.Marshal()
	assert.NoError(t, err)
	assert.Equal(t, `{"confidence":0.93110347,"nested":[{"n":1e-7}],"track_id":9007199254740993}`, string(out))
}

func TestMarshalNilDocument(t *testing.T) {
	var doc model.AnnotationDocument
	out, err := doc.Marshal()
	assert.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestExplicitAnnotation(t *testing.T) {
	var missing model.AnnotationDocument
	assert.DeepEqual(t, map[string]interface{}{}, missing.ExplicitAnnotation())
	assert.DeepEqual(t, map[string]interface{}{}, model.AnnotationDocument{"job_id": "x"}.ExplicitAnnotation())

	moderation := model.GetExampleModerationDocument()
	explicit, ok := moderation.ExplicitAnnotation().(map[string]interface{})
	assert.True(t, ok)
	assert.NotNil(t, explicit["frames"])
}

func TestCloneIsDeep(t *testing.T) {
	original := model.GetExampleAnalysisDocument()
	clone := original.Clone()
	assert.DeepEqual(t, original, clone)

	results, _ := clone.AnnotationResults()
	results[0].(map[string]interface{})["explicit_annotation"] = "changed"
	clone["extra"] = true

	originalResults, _ := original.AnnotationResults()
	assert.DeepEqual(t, map[string]interface{}{"frames": []interface{}{}}, originalResults[0].(map[string]interface{})["explicit_annotation"])
	_, found := original["extra"]
	assert.False(t, found)

	var nilDoc model.AnnotationDocument
	assert.True(t, nilDoc.Clone() == nil)
}
