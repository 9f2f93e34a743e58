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

// Package services. This file, `processed.go`, holds the set of videos the
// polling pipeline has already submitted. The default implementation lives
// in memory and is lost on restart, so a restarted poller may submit the
// latest video again. BigQueryProcessedStore keeps the set across restarts.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// ProcessedStore is a grow-only set of video names.
type ProcessedStore interface {
	Contains(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, name string) error
}

// NewProcessedStore builds the store selected in configuration. client is
// only used for the BigQuery backend.
func NewProcessedStore(ctx context.Context, config cloud.ProcessedStoreConfig, client *bigquery.Client) (ProcessedStore, error) {
	switch config.Backend {
	case "", cloud.ProcessedStoreMemory:
		return NewMemoryProcessedStore(), nil
	case cloud.ProcessedStoreBigQuery:
		if client == nil {
			return nil, errors.New("bigquery processed store needs a bigquery client")
		}
		store := NewBigQueryProcessedStore(client, config.Dataset, config.Table)
		if err := store.EnsureTable(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown processed store backend %q", config.Backend)
	}
}

// MemoryProcessedStore is a ProcessedStore held in process memory.
type MemoryProcessedStore struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func NewMemoryProcessedStore() *MemoryProcessedStore {
	return &MemoryProcessedStore{names: make(map[string]struct{})}
}

func (s *MemoryProcessedStore) Contains(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.names[name]
	return ok, nil
}

func (s *MemoryProcessedStore) Add(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[name] = struct{}{}
	return nil
}

// Len returns the number of names recorded.
func (s *MemoryProcessedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// ProcessedVideo is one row of the BigQuery processed-video table.
type ProcessedVideo struct {
	VideoName   string    `bigquery:"video_name"`
	ProcessedAt time.Time `bigquery:"processed_at"`
}

// BigQueryProcessedStore keeps the set in a BigQuery table, one row per
// submission. Reads go through a local cache so the table is queried at most
// once per name and process.
type BigQueryProcessedStore struct {
	client  *bigquery.Client
	dataset string
	table   string
	cache   *MemoryProcessedStore
}

func NewBigQueryProcessedStore(client *bigquery.Client, dataset string, table string) *BigQueryProcessedStore {
	return &BigQueryProcessedStore{client: client, dataset: dataset, table: table, cache: NewMemoryProcessedStore()}
}

// GetFQN returns the table name in `project.dataset.table` form.
func (s *BigQueryProcessedStore) GetFQN() string {
	fqn := s.client.Dataset(s.dataset).Table(s.table).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// EnsureTable creates the table when it does not exist.
func (s *BigQueryProcessedStore) EnsureTable(ctx context.Context) error {
	table := s.client.Dataset(s.dataset).Table(s.table)
	_, err := table.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("failed to read table metadata for %s: %w", s.GetFQN(), err)
	}
	schema, err := bigquery.InferSchema(ProcessedVideo{})
	if err != nil {
		return err
	}
	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.GetFQN(), err)
	}
	return nil
}

func (s *BigQueryProcessedStore) Contains(ctx context.Context, name string) (bool, error) {
	if ok, _ := s.cache.Contains(ctx, name); ok {
		return true, nil
	}

	q := s.client.Query(fmt.Sprintf(QryProcessedVideoCount, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "video_name", Value: name}}
	itr, err := q.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("processed video lookup failed: %w", err)
	}
	var row []bigquery.Value
	err = itr.Next(&row)
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("processed video lookup failed: %w", err)
	}
	if len(row) == 0 {
		return false, nil
	}
	count, _ := row[0].(int64)
	if count > 0 {
		_ = s.cache.Add(ctx, name)
	}
	return count > 0, nil
}

func (s *BigQueryProcessedStore) Add(ctx context.Context, name string) error {
	_ = s.cache.Add(ctx, name)
	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(ctx, &ProcessedVideo{VideoName: name, ProcessedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("bigquery insert failed for %s: %w", name, err)
	}
	return nil
}
