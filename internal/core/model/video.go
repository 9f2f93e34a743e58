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

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// VideoObject is a video detected under the input prefix (or in the watched
// directory). It is never modified by this service.
type VideoObject struct {
	Name        string    `json:"name"`         // Base name, e.g. "clip2.mp4".
	ObjectPath  string    `json:"object_path"`  // Full object name in the bucket, e.g. "visualize-input/clip2.mp4".
	Bucket      string    `json:"bucket"`       // Bucket holding the object.
	Created     time.Time `json:"created"`      // Creation time reported by storage or the file system.
	Extension   string    `json:"extension"`    // Lower-case extension including the dot.
	ContentType string    `json:"content_type"` // MIME type resolved from the extension.
}

// NewVideoObject builds a VideoObject for an object path in bucket.
func NewVideoObject(bucket string, objectPath string, created time.Time) *VideoObject {
	name := path.Base(objectPath)
	return &VideoObject{
		Name:       name,
		ObjectPath: objectPath,
		Bucket:     bucket,
		Created:    created,
		Extension:  strings.ToLower(path.Ext(name)),
	}
}

// URI returns the gs:// URI of the video.
func (v *VideoObject) URI() string {
	return GCSURI(v.Bucket, v.ObjectPath)
}

// Stem returns the base name without its extension.
func (v *VideoObject) Stem() string {
	return strings.TrimSuffix(v.Name, path.Ext(v.Name))
}

// GCSURI formats a gs:// URI.
func GCSURI(bucket string, object string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, object)
}

// ParseGCSURI splits a gs:// URI into bucket and object name.
func ParseGCSURI(uri string) (bucket string, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs:// uri has no object name: %q", uri)
	}
	return bucket, object, nil
}
