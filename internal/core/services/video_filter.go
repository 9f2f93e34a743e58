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

package services

import (
	"path"
	"strings"

	"github.com/h2non/filetype"
)

// VideoFilter is the extension allow-list of a trigger controller.
type VideoFilter struct {
	extensions map[string]struct{}
}

// NewVideoFilter normalizes extensions to lower case with a leading dot.
func NewVideoFilter(extensions []string) *VideoFilter {
	f := &VideoFilter{extensions: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = struct{}{}
	}
	return f
}

// Accepts reports whether name ends in an allowed extension, ignoring case.
func (f *VideoFilter) Accepts(name string) bool {
	_, ok := f.extensions[strings.ToLower(path.Ext(name))]
	return ok
}

// ContentTypeFor resolves the MIME type of a file from its extension.
func ContentTypeFor(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if kind := filetype.GetType(ext); kind != filetype.Unknown {
		return kind.MIME.Value
	}
	switch ext {
	case "mpeg", "mpg":
		return "video/mpeg"
	case "3gp":
		return "video/3gpp"
	}
	return "application/octet-stream"
}
