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
package review

import (
	"sort"

	"safechild/internal/database/models"
	"safechild/internal/database/repositories"
	"safechild/internal/errs"
	"safechild/internal/geo"
	"safechild/internal/triage"

	"github.com/pterm/pterm"
)

// DefaultRadiusKm applies when a point is supplied without a radius.
const DefaultRadiusKm = 50.0

// Request carries the operator's active filters. All state is request-scoped;
// the flow itself holds none. A nil Around bypasses geofiltering entirely,
// which is distinct from a point that matches nothing.
type Request struct {
	Status  string
	Urgency string
	Around  *geo.Point

	// RadiusKm distinguishes "omitted" from "explicitly zero": nil falls back
	// to the flow's default, while a pointer to 0 keeps only reports at the
	// exact coordinates.
	RadiusKm *float64
}

// Case is one report annotated with blacklist membership.
type Case struct {
	Report      *models.Report `json:"report"`
	Blacklisted bool           `json:"blacklisted"`
}

// Summary aggregates the post-filter case list. Counts reflect only what
// matched every active filter.
type Summary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Resolved int `json:"resolved"`
	Urgent   int `json:"urgent"`
}

// CaseList is the operator-facing result of one review query.
type CaseList struct {
	Cases                []Case   `json:"cases"`
	Summary              Summary  `json:"summary"`
	BlacklistedLocations []string `json:"blacklisted_locations"`
}

// Flow composes the report store, the distance filter, and the blacklist
// classifier into the operator case list.
type Flow struct {
	repo          repositories.ReportRepository
	blacklist     *triage.Blacklist
	defaultRadius float64
	logger        *pterm.Logger
}

// NewFlow creates the review flow. defaultRadiusKm applies to geofiltered
// queries that omit a radius; values <= 0 fall back to DefaultRadiusKm.
func NewFlow(repo repositories.ReportRepository, blacklist *triage.Blacklist, defaultRadiusKm float64, logger *pterm.Logger) *Flow {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	return &Flow{
		repo:          repo,
		blacklist:     blacklist,
		defaultRadius: defaultRadiusKm,
		logger:        logger,
	}
}

// Cases runs one review query: store query (status/urgency plus coarse
// bounding box), precise haversine pass, blacklist annotation, then post-filter
// aggregate counts.
func (f *Flow) Cases(req Request) CaseList {
	filter := repositories.QueryFilter{
		Status:  req.Status,
		Urgency: req.Urgency,
	}
	if req.Around != nil {
		radius := f.defaultRadius
		if req.RadiusKm != nil && *req.RadiusKm >= 0 {
			radius = *req.RadiusKm
		}
		filter.Around = req.Around
		filter.RadiusKm = radius
	}

	reports := f.repo.Query(filter)
	reports = geo.WithinRadius(req.Around, reports, filter.RadiusKm)

	flagged := f.blacklist.Locations()

	cases := make([]Case, 0, len(reports))
	var summary Summary
	for _, report := range reports {
		_, blacklisted := flagged[report.Location]
		cases = append(cases, Case{Report: report, Blacklisted: blacklisted})

		summary.Total++
		switch report.Status {
		case models.StatusPending:
			summary.Pending++
		case models.StatusVerified:
			summary.Verified++
		case models.StatusResolved:
			summary.Resolved++
		}
		if report.Urgency == models.UrgencyUrgent {
			summary.Urgent++
		}
	}

	locations := make([]string, 0, len(flagged))
	for location := range flagged {
		locations = append(locations, location)
	}
	sort.Strings(locations)

	return CaseList{
		Cases:                cases,
		Summary:              summary,
		BlacklistedLocations: locations,
	}
}

// UpdateStatus moves one case to a new status. Any status may move to any
// other; an unknown id is a silent no-op at the store level.
func (f *Flow) UpdateStatus(id uint, newStatus string) error {
	if !models.ValidStatus(newStatus) {
		return &errs.ValidationError{Reason: "unknown status: " + newStatus}
	}
	if err := f.repo.UpdateStatus(id, newStatus); err != nil {
		return err
	}
	f.logger.Info("Case status updated", f.logger.Args("id", id, "status", newStatus))
	return nil
}
