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

// Package services. This file, `queries.go`, centralizes the BigQuery SQL
// used by the services. The `%s` verb is the fully qualified table name;
// values are always passed as named query parameters.
package services

const (
	// QryProcessedVideoCount counts the rows recorded for @video_name.
	QryProcessedVideoCount = "SELECT COUNT(1) AS processed FROM `%s` WHERE video_name = @video_name"
)
