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
package repositories

import (
	"errors"

	"safechild/internal/database/models"
	"safechild/internal/errs"
	"safechild/internal/geo"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// QueryFilter narrows a report listing. Status/Urgency equal to "All" (or
// empty) disable that predicate. Around, if set, adds a coarse rectangular
// pre-filter of ±RadiusKm/111.0 degrees around the point; the precise
// haversine pass happens outside the store.
type QueryFilter struct {
	Status   string
	Urgency  string
	Around   *geo.Point
	RadiusKm float64
}

// ReportRepository handles persistence for submitted reports.
//
// Query and CountByLocation never surface storage errors: a failed read is
// logged and degrades to an empty result so the reviewing dashboard stays up
// through transient storage hiccups. Create, UpdateStatus, and FindByID do
// surface failures, as silent data loss on those paths is not acceptable.
type ReportRepository interface {
	Create(report *models.Report) error
	UpdateStatus(id uint, newStatus string) error
	FindByID(id uint) (*models.Report, error)
	Query(filter QueryFilter) []*models.Report
	CountByLocation() map[string]int64
	Count() int64
}

type reportRepo struct {
	db     *gorm.DB
	logger *pterm.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB, logger *pterm.Logger) ReportRepository {
	return &reportRepo{
		db:     db,
		logger: logger,
	}
}

func (r *reportRepo) Create(report *models.Report) error {
	if err := r.db.Create(report).Error; err != nil {
		return &errs.PersistenceError{Op: "insert report", Err: err}
	}
	return nil
}

// UpdateStatus updates exactly one row matched by id. An unknown id affects
// zero rows and is not an error.
func (r *reportRepo) UpdateStatus(id uint, newStatus string) error {
	res := r.db.Model(&models.Report{}).Where("id = ?", id).Update("status", newStatus)
	if res.Error != nil {
		return &errs.PersistenceError{Op: "update status", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		r.logger.Debug("Status update matched no report", r.logger.Args("id", id))
	}
	return nil
}

// FindByID returns gorm.ErrRecordNotFound unwrapped for unknown ids; any other
// failure is a PersistenceError.
func (r *reportRepo) FindByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, &errs.PersistenceError{Op: "load report", Err: err}
	}
	return &report, nil
}

func (r *reportRepo) Query(filter QueryFilter) []*models.Report {
	query := r.db.Model(&models.Report{})

	if filter.Status != "" && filter.Status != models.FilterAll {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Urgency != "" && filter.Urgency != models.FilterAll {
		query = query.Where("urgency = ?", filter.Urgency)
	}
	if filter.Around != nil {
		// Coarse degrees-per-km box; intentionally imprecise. Candidates are
		// narrowed here and measured exactly by the haversine pass afterwards.
		delta := filter.RadiusKm / geo.KmPerDegree
		query = query.
			Where("latitude BETWEEN ? AND ?", filter.Around.Lat-delta, filter.Around.Lat+delta).
			Where("longitude BETWEEN ? AND ?", filter.Around.Lon-delta, filter.Around.Lon+delta)
	}

	var reports []*models.Report
	if err := query.Order("created_at DESC, id DESC").Find(&reports).Error; err != nil {
		r.logger.Error("Failed to query reports", r.logger.Args("error", err))
		return nil
	}
	return reports
}

// CountByLocation aggregates all reports grouped by the exact location string.
// No normalization or case-folding is applied.
func (r *reportRepo) CountByLocation() map[string]int64 {
	type row struct {
		Location string
		Count    int64
	}

	var rows []row
	err := r.db.Model(&models.Report{}).
		Select("location, COUNT(*) as count").
		Group("location").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("Failed to aggregate reports by location", r.logger.Args("error", err))
		return map[string]int64{}
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Location] = row.Count
	}
	return counts
}

func (r *reportRepo) Count() int64 {
	var count int64
	if err := r.db.Model(&models.Report{}).Count(&count).Error; err != nil {
		r.logger.Error("Failed to count reports", r.logger.Args("error", err))
		return 0
	}
	return count
}
