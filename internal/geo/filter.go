package geo

import "safechild/internal/database/models"

// WithinRadius retains the candidates whose distance to point is at most
// radiusKm (inclusive). Candidates without coordinates are dropped, not
// errored. A nil point bypasses the filter entirely and returns candidates
// unchanged.
//
// This is the precise second pass after the store's bounding-box pre-filter.
func WithinRadius(point *Point, candidates []*models.Report, radiusKm float64) []*models.Report {
	if point == nil {
		return candidates
	}

	filtered := make([]*models.Report, 0, len(candidates))
	for _, report := range candidates {
		if report.Latitude == nil || report.Longitude == nil {
			continue
		}
		dist := HaversineDistanceKm(point.Lat, point.Lon, *report.Latitude, *report.Longitude)
		if dist <= radiusKm {
			filtered = append(filtered, report)
		}
	}
	return filtered
}
