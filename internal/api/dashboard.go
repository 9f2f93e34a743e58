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

// Package api. This file defines the status route the viewer polls to learn
// whether a new merged document has been published.
//
// Functions:
//   - Dashboard: Registers GET /status on the given group.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dashboard configures the status routes.
//
// Inputs:
//   - r: The group the routes are added to, normally /api/v1.
//   - v: The viewer state reported by the routes.
func Dashboard(r *gin.RouterGroup, v *Viewer) {
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, v.Status())
	})
}
