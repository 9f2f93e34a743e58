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

package test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-video-annotate/internal/cloud"
	"github.com/jaycherian/gcp-go-video-annotate/internal/core/model"
	"google.golang.org/api/googleapi"
)

// RateLimitError is the error Cloud Storage returns for too many mutations.
func RateLimitError() error {
	return &googleapi.Error{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"}
}

// StoredObject is one object held by MemoryBlobStore.
type StoredObject struct {
	Data    []byte
	Created time.Time
	Options cloud.WriteOptions
}

// WriteCall records one call to MemoryBlobStore.Write.
type WriteCall struct {
	Name    string
	Options cloud.WriteOptions
	Err     error
}

// MemoryBlobStore is an in-memory cloud.BlobStore. List returns objects in
// insertion order, like an unsorted storage listing.
type MemoryBlobStore struct {
	mu        sync.Mutex
	objects   map[string]*StoredObject
	order     []string
	writeErrs map[string][]error
	Writes    []WriteCall
	ListErr   error
	now       func() time.Time
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		objects:   make(map[string]*StoredObject),
		writeErrs: make(map[string][]error),
		now:       time.Now,
	}
}

// Put stores an object with an explicit creation time.
func (s *MemoryBlobStore) Put(name string, data []byte, created time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(name, &StoredObject{Data: data, Created: created})
}

// PutString stores a text object created now.
func (s *MemoryBlobStore) PutString(name string, data string) {
	s.Put(name, []byte(data), s.now())
}

func (s *MemoryBlobStore) put(name string, object *StoredObject) {
	if _, ok := s.objects[name]; !ok {
		s.order = append(s.order, name)
	}
	s.objects[name] = object
}

// FailWrites queues errors returned by the next writes to name, one per call.
func (s *MemoryBlobStore) FailWrites(name string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErrs[name] = append(s.writeErrs[name], errs...)
}

// Get returns the stored object, or nil.
func (s *MemoryBlobStore) Get(name string) *StoredObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[name]
}

// WriteCount returns how many writes were attempted for name.
func (s *MemoryBlobStore) WriteCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, w := range s.Writes {
		if w.Name == name {
			count++
		}
	}
	return count
}

func (s *MemoryBlobStore) List(_ context.Context, prefix string) ([]cloud.ObjectAttrs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]cloud.ObjectAttrs, 0)
	for _, name := range s.order {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		object := s.objects[name]
		out = append(out, cloud.ObjectAttrs{
			Name:        name,
			Created:     object.Created,
			Size:        int64(len(object.Data)),
			ContentType: object.Options.ContentType,
		})
	}
	return out, nil
}

func (s *MemoryBlobStore) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	object, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, cloud.ErrObjectNotFound)
	}
	return append([]byte(nil), object.Data...), nil
}

func (s *MemoryBlobStore) Write(_ context.Context, name string, data []byte, opts cloud.WriteOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if queued := s.writeErrs[name]; len(queued) > 0 {
		err := queued[0]
		s.writeErrs[name] = queued[1:]
		s.Writes = append(s.Writes, WriteCall{Name: name, Options: opts, Err: err})
		return err
	}
	s.Writes = append(s.Writes, WriteCall{Name: name, Options: opts})
	s.put(name, &StoredObject{Data: append([]byte(nil), data...), Created: s.now(), Options: opts})
	return nil
}

func (s *MemoryBlobStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok, nil
}

// FakeAnnotator is a cloud.VideoAnnotator that writes Result to the job's
// output URI in Store, the way the real service does.
type FakeAnnotator struct {
	mu     sync.Mutex
	Store  *MemoryBlobStore
	Result string
	Err    error
	Jobs   []*model.AnalysisJob
}

func (a *FakeAnnotator) AnnotateVideo(ctx context.Context, job *model.AnalysisJob) error {
	a.mu.Lock()
	a.Jobs = append(a.Jobs, job)
	a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	_, object, err := model.ParseGCSURI(job.OutputURI)
	if err != nil {
		return err
	}
	result := a.Result
	if result == "" {
		result = model.ExampleAnalysisJSON
	}
	return a.Store.Write(ctx, object, []byte(result), cloud.WriteOptions{ContentType: cloud.ContentTypeJSON})
}

// JobCount returns how many jobs were submitted.
func (a *FakeAnnotator) JobCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Jobs)
}

// RecordingNotifier counts Notify calls.
type RecordingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *RecordingNotifier) Notify(_ context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
}

func (n *RecordingNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// ModerationCall records one moderation request.
type ModerationCall struct {
	Bucket    string
	ObjectKey string
}

// RecordingModerationRequester records every request.
type RecordingModerationRequester struct {
	mu    sync.Mutex
	calls []ModerationCall
}

func (m *RecordingModerationRequester) RequestModeration(_ context.Context, bucket string, objectKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ModerationCall{Bucket: bucket, ObjectKey: objectKey})
}

func (m *RecordingModerationRequester) Calls() []ModerationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ModerationCall(nil), m.calls...)
}
