// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package api

import (
	"net/http"

	"safechild/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface: submission, review, dashboard, system.
func NewRouter(
	reports *handlers.ReportHandler,
	dashboard *handlers.DashboardHandler,
	system *handlers.SystemHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/reports", reports.SubmitReport)
		apiGroup.GET("/reports", reports.ListCases)
		apiGroup.POST("/reports/:id/status", reports.UpdateStatus)
		apiGroup.GET("/reports/:id/insights", dashboard.GetCaseInsights)

		apiGroup.GET("/blacklist", dashboard.GetBlacklist)
		apiGroup.GET("/places", dashboard.SearchPlaces)

		apiGroup.GET("/system/stats", system.GetSystemStats)
	}

	return router
}
