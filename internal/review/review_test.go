package review

import (
	"path/filepath"
	"testing"
	"time"

	"safechild/internal/database/models"
	"safechild/internal/database/repositories"
	"safechild/internal/geo"
	"safechild/internal/triage"

	"github.com/glebarez/sqlite"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

func newTestFlow(t *testing.T) (*Flow, repositories.ReportRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "reports.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Report{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
	repo := repositories.NewReportRepository(db, logger)
	blacklist := triage.NewBlacklist(repo, triage.DefaultBlacklistThreshold)
	return NewFlow(repo, blacklist, 0, logger), repo
}

func seed(t *testing.T, repo repositories.ReportRepository, status, urgency, location string, lat, lon float64, createdAt time.Time) *models.Report {
	t.Helper()

	report := &models.Report{
		Phone:     "1098",
		Message:   "seeded report",
		Status:    status,
		Urgency:   urgency,
		Location:  location,
		Latitude:  &lat,
		Longitude: &lon,
		CreatedAt: createdAt,
	}
	if err := repo.Create(report); err != nil {
		t.Fatalf("Failed to seed report: %v", err)
	}
	return report
}

func TestCases_StatusAndUrgencyFilters(t *testing.T) {
	flow, repo := newTestFlow(t)
	base := time.Now().UTC()

	seed(t, repo, models.StatusResolved, models.UrgencyNormal, "A", 12.91, 74.85, base.Add(-2*time.Minute))
	seed(t, repo, models.StatusResolved, models.UrgencyUrgent, "B", 12.91, 74.85, base.Add(-time.Minute))
	seed(t, repo, models.StatusPending, models.UrgencyNormal, "C", 12.91, 74.85, base)

	list := flow.Cases(Request{Status: models.StatusResolved, Urgency: models.FilterAll})
	if len(list.Cases) != 2 {
		t.Fatalf("Expected exactly the 2 resolved cases, got %d", len(list.Cases))
	}
	if list.Cases[0].Report.Location != "B" {
		t.Errorf("Expected newest resolved case first, got %q", list.Cases[0].Report.Location)
	}
	if list.Summary.Total != 2 || list.Summary.Resolved != 2 || list.Summary.Pending != 0 {
		t.Errorf("Expected post-filter counts over resolved cases only, got %+v", list.Summary)
	}
	if list.Summary.Urgent != 1 {
		t.Errorf("Expected 1 urgent case in the filtered set, got %d", list.Summary.Urgent)
	}
}

func TestCases_GeofilterPrecisePass(t *testing.T) {
	flow, repo := newTestFlow(t)
	now := time.Now().UTC()

	seed(t, repo, models.StatusPending, models.UrgencyNormal, "Mangalore", 12.9141, 74.8560, now)
	seed(t, repo, models.StatusPending, models.UrgencyNormal, "Bangalore", 12.9716, 77.5946, now)

	list := flow.Cases(Request{
		Status:  models.FilterAll,
		Urgency: models.FilterAll,
		Around:  &geo.Point{Lat: 12.9141, Lon: 74.8560},
		// RadiusKm left nil: the default 50 km applies
	})

	if len(list.Cases) != 1 {
		t.Fatalf("Expected only the nearby case within the default radius, got %d", len(list.Cases))
	}
	if list.Cases[0].Report.Location != "Mangalore" {
		t.Errorf("Expected the Mangalore case, got %q", list.Cases[0].Report.Location)
	}
	if list.Summary.Total != 1 {
		t.Errorf("Expected summary over the geofiltered set, got total %d", list.Summary.Total)
	}
}

func TestCases_ZeroRadiusKeepsExactMatchesOnly(t *testing.T) {
	flow, repo := newTestFlow(t)
	now := time.Now().UTC()

	seed(t, repo, models.StatusPending, models.UrgencyNormal, "Mangalore", 12.9141, 74.8560, now)
	seed(t, repo, models.StatusPending, models.UrgencyNormal, "Nearby", 12.9200, 74.8560, now)

	zero := 0.0
	list := flow.Cases(Request{
		Status:   models.FilterAll,
		Urgency:  models.FilterAll,
		Around:   &geo.Point{Lat: 12.9141, Lon: 74.8560},
		RadiusKm: &zero,
	})

	if len(list.Cases) != 1 {
		t.Fatalf("Expected radius 0 to keep only the exact-coordinate case, got %d", len(list.Cases))
	}
	if list.Cases[0].Report.Location != "Mangalore" {
		t.Errorf("Expected the exact-coordinate case, got %q", list.Cases[0].Report.Location)
	}
}

func TestCases_NoPointBypassesGeofilter(t *testing.T) {
	flow, repo := newTestFlow(t)
	now := time.Now().UTC()

	seed(t, repo, models.StatusPending, models.UrgencyNormal, "Mangalore", 12.9141, 74.8560, now)
	seed(t, repo, models.StatusPending, models.UrgencyNormal, "Bangalore", 12.9716, 77.5946, now)

	list := flow.Cases(Request{Status: models.FilterAll, Urgency: models.FilterAll})
	if len(list.Cases) != 2 {
		t.Errorf("Expected all cases without a geofilter point, got %d", len(list.Cases))
	}
}

func TestCases_BlacklistAnnotation(t *testing.T) {
	flow, repo := newTestFlow(t)
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		seed(t, repo, models.StatusPending, models.UrgencyNormal, "X", 12.91, 74.85, base.Add(time.Duration(i)*time.Second))
	}
	seed(t, repo, models.StatusPending, models.UrgencyNormal, "Y", 12.91, 74.85, base)

	list := flow.Cases(Request{Status: models.FilterAll, Urgency: models.FilterAll})
	if len(list.Cases) != 4 {
		t.Fatalf("Expected 4 cases, got %d", len(list.Cases))
	}

	for _, c := range list.Cases {
		wantFlag := c.Report.Location == "X"
		if c.Blacklisted != wantFlag {
			t.Errorf("Case at %q: blacklisted = %v, expected %v", c.Report.Location, c.Blacklisted, wantFlag)
		}
	}

	if len(list.BlacklistedLocations) != 1 || list.BlacklistedLocations[0] != "X" {
		t.Errorf("Expected blacklisted locations [X], got %v", list.BlacklistedLocations)
	}
}

func TestCases_EmptyStoreYieldsEmptyList(t *testing.T) {
	flow, _ := newTestFlow(t)

	list := flow.Cases(Request{})
	if len(list.Cases) != 0 {
		t.Errorf("Expected no cases from an empty store, got %d", len(list.Cases))
	}
	if list.Summary.Total != 0 {
		t.Errorf("Expected zero totals, got %+v", list.Summary)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	flow, repo := newTestFlow(t)
	report := seed(t, repo, models.StatusPending, models.UrgencyNormal, "A", 12.91, 74.85, time.Now().UTC())

	if err := flow.UpdateStatus(report.ID, "Closed"); err == nil {
		t.Error("Expected an error for an unknown status value")
	}

	reloaded, err := repo.FindByID(report.ID)
	if err != nil {
		t.Fatalf("Failed to reload report: %v", err)
	}
	if reloaded.Status != models.StatusPending {
		t.Errorf("Expected status unchanged after rejected update, got %q", reloaded.Status)
	}
}

func TestUpdateStatus_AnyStatusMayMoveToAnyOther(t *testing.T) {
	flow, repo := newTestFlow(t)
	report := seed(t, repo, models.StatusResolved, models.UrgencyNormal, "A", 12.91, 74.85, time.Now().UTC())

	// No ordering constraint: Resolved may move back to Pending
	if err := flow.UpdateStatus(report.ID, models.StatusPending); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	reloaded, err := repo.FindByID(report.ID)
	if err != nil {
		t.Fatalf("Failed to reload report: %v", err)
	}
	if reloaded.Status != models.StatusPending {
		t.Errorf("Expected status Pending, got %q", reloaded.Status)
	}
}
