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

// Package services. This file, `merge.go`, combines the analysis document
// (primary) with the moderation document (secondary).
//
// There are two strategies and they are intentionally not unified:
//   - PrimaryAugmented keeps the analysis document and replaces the
//     explicit_annotation of its first result with the moderation verdict.
//   - SecondaryWrapped ignores the analysis document and wraps the entire
//     moderation document as the explicit_annotation of a single result.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
)

var (
	// ErrMergeInputMissing marks a secondary document that could not be read or parsed.
	ErrMergeInputMissing = errors.New("merge input missing")
	// ErrUnknownMergeStrategy is returned by NewMergeStrategy.
	ErrUnknownMergeStrategy = errors.New("unknown merge strategy")
)

// MergeStrategy turns the two input documents into the published document.
// Merge never modifies its arguments.
type MergeStrategy interface {
	Name() string
	// ReadsPrimary reports whether the primary document is consulted at all.
	ReadsPrimary() bool
	// RequiresSecondary reports whether a missing secondary fails the merge.
	RequiresSecondary() bool
	Merge(primary, secondary model.AnnotationDocument) model.AnnotationDocument
}

// ValueMerger is implemented by strategies that accept a secondary document
// of any JSON type, not only an object. LoadAndMerge prefers it when present.
type ValueMerger interface {
	MergeValue(primary model.AnnotationDocument, secondary interface{}) model.AnnotationDocument
}

// NewMergeStrategy returns the strategy registered under name.
func NewMergeStrategy(name string) (MergeStrategy, error) {
	switch name {
	case cloud.MergeStrategyPrimaryAugmented:
		return PrimaryAugmented{}, nil
	case cloud.MergeStrategySecondaryWrapped:
		return SecondaryWrapped{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMergeStrategy, name)
	}
}

// PrimaryAugmented is the polling pipeline's strategy.
type PrimaryAugmented struct{}

func (PrimaryAugmented) Name() string            { return cloud.MergeStrategyPrimaryAugmented }
func (PrimaryAugmented) ReadsPrimary() bool      { return true }
func (PrimaryAugmented) RequiresSecondary() bool { return false }

// Merge sets annotation_results[0].explicit_annotation to the secondary's
// explicit_annotation ({} when absent). A primary without results gets a
// single synthesized result with empty face and object annotations.
func (PrimaryAugmented) Merge(primary, secondary model.AnnotationDocument) model.AnnotationDocument {
	explicit := secondary.Clone().ExplicitAnnotation()

	merged := primary.Clone()
	if merged == nil {
		merged = model.AnnotationDocument{}
	}

	results, ok := merged.AnnotationResults()
	if ok && len(results) > 0 {
		if first, isObject := results[0].(map[string]interface{}); isObject {
			first[model.FieldExplicitAnnotation] = explicit
		} else {
			results[0] = map[string]interface{}{model.FieldExplicitAnnotation: explicit}
		}
		return merged
	}

	merged[model.FieldAnnotationResults] = []interface{}{
		map[string]interface{}{
			model.FieldFaceDetectionAnnotations: []interface{}{},
			model.FieldExplicitAnnotation:       explicit,
			model.FieldObjectAnnotations:        []interface{}{},
		},
	}
	return merged
}

// SecondaryWrapped is the watch pipeline's strategy.
type SecondaryWrapped struct{}

func (SecondaryWrapped) Name() string            { return cloud.MergeStrategySecondaryWrapped }
func (SecondaryWrapped) ReadsPrimary() bool      { return false }
func (SecondaryWrapped) RequiresSecondary() bool { return true }

// Merge returns {annotation_results: [{explicit_annotation: <secondary>}]}.
// The primary is ignored.
func (s SecondaryWrapped) Merge(_, secondary model.AnnotationDocument) model.AnnotationDocument {
	if secondary == nil {
		return s.MergeValue(nil, map[string]interface{}{})
	}
	return s.MergeValue(nil, map[string]interface{}(secondary))
}

// MergeValue wraps secondary as it was decoded, whatever its JSON type.
func (SecondaryWrapped) MergeValue(_ model.AnnotationDocument, secondary interface{}) model.AnnotationDocument {
	return model.AnnotationDocument{
		model.FieldAnnotationResults: []interface{}{
			map[string]interface{}{model.FieldExplicitAnnotation: model.CloneValue(secondary)},
		},
	}
}

// LoadAndMerge reads the inputs the strategy needs and merges them.
//
// Inputs:
//   - ctx: The request context.
//   - store: Where both documents live.
//   - strategy: The merge strategy.
//   - primaryPath: Object name of the analysis document; ignored when the strategy does not read it.
//   - secondaryPath: Object name of the moderation document; empty means "not found".
//
// Outputs:
//   - model.AnnotationDocument: The merged document.
//   - error: A primary read or parse failure, or ErrMergeInputMissing when
//     the strategy requires the secondary and it is unavailable.
func LoadAndMerge(
	ctx context.Context,
	store cloud.BlobStore,
	strategy MergeStrategy,
	primaryPath string,
	secondaryPath string,
) (model.AnnotationDocument, error) {
	var primary model.AnnotationDocument
	if strategy.ReadsPrimary() {
		data, err := store.Read(ctx, primaryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read analysis output: %w", err)
		}
		primary, err = model.ParseAnnotationDocument(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse analysis output %s: %w", primaryPath, err)
		}
	}

	value, err := readSecondary(ctx, store, strategy, secondaryPath)
	if err != nil {
		if strategy.RequiresSecondary() {
			return nil, err
		}
		slog.WarnContext(ctx, "moderation output unavailable; merging with an empty document",
			"path", secondaryPath, "error", err)
		value = nil
	}

	if valueMerger, ok := strategy.(ValueMerger); ok {
		return valueMerger.MergeValue(primary, value), nil
	}
	secondary, _ := value.(map[string]interface{})
	return strategy.Merge(primary, model.AnnotationDocument(secondary)), nil
}

// readSecondary reads the secondary document. Strategies that are not a
// ValueMerger only take an object.
func readSecondary(ctx context.Context, store cloud.BlobStore, strategy MergeStrategy, name string) (interface{}, error) {
	value, err := readValue(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMergeInputMissing, err)
	}
	if _, ok := strategy.(ValueMerger); ok {
		return value, nil
	}
	if _, ok := value.(map[string]interface{}); !ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrMergeInputMissing, name, model.ErrNotAnObject)
	}
	return value, nil
}

func readValue(ctx context.Context, store cloud.BlobStore, name string) (interface{}, error) {
	if name == "" {
		return nil, errors.New("no matching object")
	}
	data, err := store.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	value, err := model.ParseJSONValue(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}
