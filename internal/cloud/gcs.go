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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file defines the storage side: the BlobStore abstraction every
// workflow writes through, its Google Cloud Storage implementation, and the
// payload of GCS Pub/Sub object notifications.
//
// Structs:
//   - GCSPubSubNotification: Maps to the JSON payload from GCS event notifications.
//   - ObjectAttrs: The listing attributes the controllers need.
//   - WriteOptions: Metadata applied to a written object.
//   - GCSStore: BlobStore backed by a single GCS bucket.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Metadata applied to every published document.
const (
	CacheControlNoCache = "no-cache"
	ContentTypeJSON     = "application/json"
)

// ErrObjectNotFound is returned by BlobStore.Read for a missing object.
var ErrObjectNotFound = errors.New("object not found")

// GCSPubSubNotification is the structure that maps to the JSON message payload
// received from a Google Cloud Storage (GCS) Pub/Sub notification. When an event
// (like object creation or update) occurs in a monitored bucket, GCS sends a message
// with this structure to the configured Pub/Sub topic.
type GCSPubSubNotification struct {
	Kind                    string                 `json:"kind"`                    // The kind of the object, typically "storage#object".
	ID                      string                 `json:"id"`                      // The full ID of the object, including bucket and generation.
	SelfLink                string                 `json:"selfLink"`                // The URI for this object.
	Name                    string                 `json:"name"`                    // The name of the object within the bucket.
	Bucket                  string                 `json:"bucket"`                  // The name of the bucket containing the object.
	Generation              string                 `json:"generation"`              // The generation number of the object's content.
	MetaGeneration          string                 `json:"metageneration"`          // The generation number of the object's metadata.
	ContentType             string                 `json:"contentType"`             // The MIME type of the object's content.
	TimeCreated             string                 `json:"timeCreated"`             // The creation time of the object.
	Updated                 string                 `json:"updated"`                 // The last modification time of the object.
	StorageClass            string                 `json:"storageClass"`            // The storage class of the object.
	TimeStorageClassUpdated string                 `json:"timeStorageClassUpdated"` // The time the storage class was last updated.
	Size                    string                 `json:"size"`                    // The size of the object in bytes.
	MD5Hash                 string                 `json:"md5Hash"`                 // The MD5 hash of the object's content.
	MediaLink               string                 `json:"mediaLink"`               // A link to download the object's content.
	MetaData                map[string]interface{} `json:"metadata"`                // User-provided metadata, if any.
	Crc32c                  string                 `json:"crc32c"`                  // The CRC32C checksum of the object's content.
	ETag                    string                 `json:"etag"`                    // The HTTP ETag of the object.
}

// Created parses TimeCreated; the zero time is returned when it is absent or malformed.
func (n *GCSPubSubNotification) Created() time.Time {
	created, err := time.Parse(time.RFC3339Nano, n.TimeCreated)
	if err != nil {
		return time.Time{}
	}
	return created
}

// ObjectAttrs is what a listing reports for one object.
type ObjectAttrs struct {
	Name        string
	Created     time.Time
	Size        int64
	ContentType string
}

// WriteOptions is the metadata applied to a written object.
type WriteOptions struct {
	CacheControl string
	ContentType  string
}

// NoCacheJSON is the metadata used for every published annotation document.
var NoCacheJSON = WriteOptions{CacheControl: CacheControlNoCache, ContentType: ContentTypeJSON}

// BlobStore is the storage capability the workflows depend on. Names are
// object names inside the store's bucket.
type BlobStore interface {
	List(ctx context.Context, prefix string) ([]ObjectAttrs, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte, opts WriteOptions) error
	Exists(ctx context.Context, name string) (bool, error)
}

// GCSStore is a BlobStore over one bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a store for bucket.
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// Bucket returns the bucket name.
func (s *GCSStore) Bucket() string {
	return s.bucket
}

// List returns every object under prefix in listing order.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]ObjectAttrs, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	out := make([]ObjectAttrs, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", s.bucket, prefix, err)
		}
		out = append(out, ObjectAttrs{
			Name:        attrs.Name,
			Created:     attrs.Created,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
		})
	}
	return out, nil
}

// Read returns the content of name. A missing object yields ErrObjectNotFound.
func (s *GCSStore) Read(ctx context.Context, name string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gs://%s/%s: %w", s.bucket, name, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", s.bucket, name, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", s.bucket, name, err)
	}
	return data, nil
}

// Write creates or replaces name. The upload is committed by Close, which is
// also where rate-limit rejections surface.
func (s *GCSStore) Write(ctx context.Context, name string, data []byte, opts WriteOptions) error {
	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.CacheControl = opts.CacheControl
	writer.ContentType = opts.ContentType
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", s.bucket, name, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to commit gs://%s/%s: %w", s.bucket, name, err)
	}
	return nil
}

// Exists reports whether name exists.
func (s *GCSStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat gs://%s/%s: %w", s.bucket, name, err)
	}
	return true, nil
}
