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
package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"safechild/internal/azure"
	"safechild/internal/database/repositories"
	"safechild/internal/enrichment"
	"safechild/internal/triage"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// DashboardHandler serves blacklist data, place search, and per-case insights
// for the operator dashboard
type DashboardHandler struct {
	repo       repositories.ReportRepository
	blacklist  *triage.Blacklist
	geocoder   *enrichment.AzureMapsGeocoder
	translator azure.Translator
	analyzer   azure.Analyzer
	logger     *pterm.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	repo repositories.ReportRepository,
	blacklist *triage.Blacklist,
	geocoder *enrichment.AzureMapsGeocoder,
	translator azure.Translator,
	analyzer azure.Analyzer,
	logger *pterm.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		repo:       repo,
		blacklist:  blacklist,
		geocoder:   geocoder,
		translator: translator,
		analyzer:   analyzer,
		logger:     logger,
	}
}

// GetBlacklist returns the flagged location set. An optional threshold query
// parameter overrides the configured default for one call.
func (h *DashboardHandler) GetBlacklist(c *gin.Context) {
	threshold := h.blacklist.Threshold()
	if t := c.Query("threshold"); t != "" {
		if val, err := strconv.Atoi(t); err == nil && val > 0 {
			threshold = val
		}
	}

	flagged := h.blacklist.LocationsAt(threshold)
	locations := make([]string, 0, len(flagged))
	for location := range flagged {
		locations = append(locations, location)
	}
	sort.Strings(locations)

	c.JSON(http.StatusOK, gin.H{
		"threshold": threshold,
		"locations": locations,
	})
}

// SearchPlaces resolves an operator's location query to address candidates
// for the geofilter.
func (h *DashboardHandler) SearchPlaces(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}

	limit := 5
	if l := c.Query("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 20 {
			limit = val
		}
	}

	candidates, err := h.geocoder.SearchPlaces(query, limit)
	if err != nil {
		h.logger.Error("Place search failed", h.logger.Args("query", query, "error", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "place search unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": candidates})
}

// GetCaseInsights translates and analyzes one case's message for the
// dashboard. Collaborator failures degrade to placeholders, never to an
// error status: the operator still needs the case rendered.
func (h *DashboardHandler) GetCaseInsights(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	report, err := h.repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		h.logger.WithCaller().Error("Failed to load report", h.logger.Args("id", id, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	translated, err := h.translator.Translate(report.Message, azure.AutoDetect, "en")
	warnings := []string{}
	if err != nil {
		h.logger.Warn("Case translation failed", h.logger.Args("id", id, "error", err))
		translated = "[Translation failed]"
		warnings = append(warnings, "translation unavailable")
	}

	analysisInput := translated
	if err != nil {
		analysisInput = report.Message
	}

	response := gin.H{
		"id":         report.ID,
		"translated": translated,
	}

	analysis, err := h.analyzer.Analyze(analysisInput)
	if err != nil {
		h.logger.Warn("Case analysis failed", h.logger.Args("id", id, "error", err))
		warnings = append(warnings, "analysis unavailable")
	} else {
		response["analysis"] = analysis
	}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}

	c.JSON(http.StatusOK, response)
}
