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
	"strconv"

	"safechild/internal/errs"
	"safechild/internal/geo"
	"safechild/internal/intake"
	"safechild/internal/review"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// DefaultHelpline is used when a submission omits the contact number.
const DefaultHelpline = "1098"

// ReportHandler handles report submission, listing, and status updates
type ReportHandler struct {
	intake *intake.Service
	review *review.Flow
	logger *pterm.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(intakeService *intake.Service, reviewFlow *review.Flow, logger *pterm.Logger) *ReportHandler {
	return &ReportHandler{
		intake: intakeService,
		review: reviewFlow,
		logger: logger,
	}
}

type submitRequest struct {
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	Urgency  string `json:"urgency"`
	Location string `json:"location"`
}

// SubmitReport accepts a citizen report. Validation failures return 400 with
// no persisted side effect; a degraded translation/analysis still returns 201
// because the insert already committed.
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Phone == "" {
		req.Phone = DefaultHelpline
	}

	result, err := h.intake.Submit(intake.Submission{
		Phone:    req.Phone,
		Message:  req.Message,
		Urgency:  req.Urgency,
		Location: req.Location,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		var validation *errs.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Reason})
			return
		}
		h.logger.WithCaller().Error("Failed to persist report", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save report"})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListCases returns the filtered operator case list. status/urgency default to
// "All"; lat+lon (optionally radius_km) enable geofiltering.
func (h *ReportHandler) ListCases(c *gin.Context) {
	req := review.Request{
		Status:  c.DefaultQuery("status", "All"),
		Urgency: c.DefaultQuery("urgency", "All"),
	}

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat/lon"})
			return
		}
		req.Around = &geo.Point{Lat: lat, Lon: lon}

		// Absent means the default radius; radius_km=0 is a valid request for
		// exact-coordinate matches only.
		if radiusStr := c.Query("radius_km"); radiusStr != "" {
			radius, err := strconv.ParseFloat(radiusStr, 64)
			if err != nil || radius < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius_km"})
				return
			}
			req.RadiusKm = &radius
		}
	} else if latStr != "" || lonStr != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be provided together"})
		return
	}

	c.JSON(http.StatusOK, h.review.Cases(req))
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves one case to a new status. An unknown id affects zero
// rows and still returns 200, matching the store's silent no-op semantics.
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if err := h.review.UpdateStatus(uint(id), req.Status); err != nil {
		var validation *errs.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Reason})
			return
		}
		h.logger.WithCaller().Error("Failed to update report status",
			h.logger.Args("id", id, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}
