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
package intake

import (
	"strings"
	"time"

	"safechild/internal/azure"
	"safechild/internal/database/models"
	"safechild/internal/database/repositories"
	"safechild/internal/enrichment"
	"safechild/internal/errs"
	"safechild/internal/geo"
	"safechild/internal/triage"

	"github.com/pterm/pterm"
)

// UnknownLocation is stored when a submission carries no location text.
const UnknownLocation = "Unknown"

// Submission is one citizen report before persistence.
type Submission struct {
	Phone    string
	Message  string
	Urgency  string
	Location string

	// ClientIP, when present and the location text is empty, lets the GeoIP
	// locator supply approximate coordinates.
	ClientIP string
}

// Result is what the submitter gets back: the persisted report plus
// best-effort translation and analysis for immediate operator feedback.
type Result struct {
	Report     *models.Report  `json:"report"`
	Translated string          `json:"translated"`
	Analysis   *azure.Analysis `json:"analysis,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// Service runs the submission flow: validate, screen for pranks, geocode,
// persist, then invoke the translation and analysis collaborators. The insert
// commits before analysis starts; collaborator failure never rolls it back.
type Service struct {
	repo       repositories.ReportRepository
	geocoder   enrichment.Geocoder
	ipLocator  *enrichment.IPLocator
	screen     *triage.KeywordScreen
	translator azure.Translator
	analyzer   azure.Analyzer
	logger     *pterm.Logger
}

// NewService creates the submission flow. ipLocator may be nil when no GeoIP
// database is configured.
func NewService(
	repo repositories.ReportRepository,
	geocoder enrichment.Geocoder,
	ipLocator *enrichment.IPLocator,
	screen *triage.KeywordScreen,
	translator azure.Translator,
	analyzer azure.Analyzer,
	logger *pterm.Logger,
) *Service {
	return &Service{
		repo:       repo,
		geocoder:   geocoder,
		ipLocator:  ipLocator,
		screen:     screen,
		translator: translator,
		analyzer:   analyzer,
		logger:     logger,
	}
}

// Submit validates and persists a report. A ValidationError means nothing was
// saved; a PersistenceError means the caller must not assume a row exists.
func (s *Service) Submit(sub Submission) (*Result, error) {
	if strings.TrimSpace(sub.Message) == "" {
		return nil, &errs.ValidationError{Reason: "message is empty"}
	}
	if s.screen.Match(sub.Message) {
		s.logger.Warn("Submission rejected by prank screen", s.logger.Args("phone", sub.Phone))
		return nil, &errs.ValidationError{Reason: "message looks like a prank and was not saved"}
	}

	urgency := sub.Urgency
	if !models.ValidUrgency(urgency) {
		urgency = models.UrgencyNormal
	}

	location := strings.TrimSpace(sub.Location)
	point := s.resolveCoordinates(location, sub.ClientIP)
	if location == "" {
		location = UnknownLocation
	}

	report := &models.Report{
		Phone:     sub.Phone,
		Message:   sub.Message,
		Status:    models.StatusPending,
		Urgency:   urgency,
		Location:  location,
		Latitude:  &point.Lat,
		Longitude: &point.Lon,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(report); err != nil {
		return nil, err
	}

	result := &Result{Report: report}
	s.enrichForOperator(result)

	s.logger.Info("Report submitted",
		s.logger.Args("id", report.ID, "urgency", report.Urgency, "location", report.Location))
	return result, nil
}

func (s *Service) resolveCoordinates(location, clientIP string) geo.Point {
	if location == "" {
		if s.ipLocator != nil {
			if hint, ok := s.ipLocator.Locate(clientIP); ok {
				return hint
			}
		}
		return enrichment.FallbackPoint
	}
	return s.geocoder.Geocode(location)
}

// enrichForOperator attaches translation and analysis to an already-persisted
// report. Failures degrade to placeholders and warnings.
func (s *Service) enrichForOperator(result *Result) {
	translated, err := s.translator.Translate(result.Report.Message, azure.AutoDetect, "en")
	if err != nil {
		s.logger.Warn("Translation failed for submission",
			s.logger.Args("id", result.Report.ID, "error", err))
		result.Translated = "[Translation failed]"
		result.Warnings = append(result.Warnings, "translation unavailable")
	} else {
		result.Translated = translated
	}

	analysisInput := result.Translated
	if err != nil {
		analysisInput = result.Report.Message
	}

	analysis, err := s.analyzer.Analyze(analysisInput)
	if err != nil {
		s.logger.Warn("Text analysis failed for submission",
			s.logger.Args("id", result.Report.ID, "error", err))
		result.Warnings = append(result.Warnings, "analysis unavailable")
		return
	}
	result.Analysis = &analysis
}
