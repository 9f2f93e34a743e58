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

// Package model defines the data structures shared by the pipelines.
// This file, `annotation.go`, defines AnnotationDocument: the JSON tree written
// by the Video Intelligence API and by the external moderation pipeline, and
// read by the web viewer.
//
// The document is a generic JSON tree. The analysis output carries dozens of
// nested fields this service never looks at, and all of them reach the viewer
// unchanged.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Field names of the annotation document that the merge logic touches.
const (
	FieldAnnotationResults        = "annotation_results"
	FieldFaceDetectionAnnotations = "face_detection_annotations"
	FieldObjectAnnotations        = "object_annotations"
	FieldExplicitAnnotation       = "explicit_annotation"
)

// ErrNotAnObject is returned when a document's top level is not a JSON object.
var ErrNotAnObject = errors.New("annotation document is not a JSON object")

// AnnotationDocument is a decoded JSON object. Numbers are kept as
// json.Number so large integers and exact decimals survive a round trip.
type AnnotationDocument map[string]interface{}

// ParseAnnotationDocument decodes data into an AnnotationDocument.
//
// Inputs:
//   - data: The raw JSON bytes.
//
// Outputs:
//   - AnnotationDocument: The decoded document.
//   - error: A syntax error, trailing data, or ErrNotAnObject.
func ParseAnnotationDocument(data []byte) (AnnotationDocument, error) {
	raw, err := ParseJSONValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, ErrNotAnObject
	}
	return AnnotationDocument(obj), nil
}

// ParseJSONValue decodes data as a single JSON value of any type: object,
// array, string, number, bool or null.
func ParseJSONValue(data []byte) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode annotation document: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to decode annotation document: trailing data after JSON value")
	}
	return raw, nil
}

// CloneValue returns a deep copy of a value produced by ParseJSONValue.
func CloneValue(v interface{}) interface{} {
	return cloneValue(v)
}

// Marshal encodes the document as compact JSON.
func (d AnnotationDocument) Marshal() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]interface{}(d))
}

// AnnotationResults returns the top-level annotation_results list. The second
// value is false when the field is absent or is not a list.
func (d AnnotationDocument) AnnotationResults() ([]interface{}, bool) {
	if d == nil {
		return nil, false
	}
	results, ok := d[FieldAnnotationResults].([]interface{})
	return results, ok
}

// ExplicitAnnotation returns the top-level explicit_annotation field, or an
// empty object when the document is nil or the field is missing.
func (d AnnotationDocument) ExplicitAnnotation() interface{} {
	if d == nil {
		return map[string]interface{}{}
	}
	value, ok := d[FieldExplicitAnnotation]
	if !ok {
		return map[string]interface{}{}
	}
	return value
}

// Clone returns a deep copy of the document.
func (d AnnotationDocument) Clone() AnnotationDocument {
	if d == nil {
		return nil
	}
	return AnnotationDocument(cloneValue(map[string]interface{}(d)).(map[string]interface{}))
}

func cloneValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, val := range typed {
			out[k] = cloneValue(val)
		}
		return out
	case AnnotationDocument:
		return cloneValue(map[string]interface{}(typed))
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, val := range typed {
			out[i] = cloneValue(val)
		}
		return out
	default:
		// Strings, json.Number, bools and nil are immutable.
		return typed
	}
}
