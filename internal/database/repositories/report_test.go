package repositories

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"safechild/internal/database/models"
	"safechild/internal/errs"
	"safechild/internal/geo"

	"github.com/glebarez/sqlite"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) ReportRepository {
	repo, _ := newTestRepoDB(t)
	return repo
}

func newTestRepoDB(t *testing.T) (ReportRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "reports.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Report{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
	return NewReportRepository(db, logger), db
}

func coords(lat, lon float64) (*float64, *float64) {
	return &lat, &lon
}

func seedReport(t *testing.T, repo ReportRepository, status, urgency, location string, createdAt time.Time) *models.Report {
	t.Helper()

	lat, lon := coords(12.9141, 74.8560)
	report := &models.Report{
		Phone:     "1098",
		Message:   "test report",
		Status:    status,
		Urgency:   urgency,
		Location:  location,
		Latitude:  lat,
		Longitude: lon,
		CreatedAt: createdAt,
	}
	if err := repo.Create(report); err != nil {
		t.Fatalf("Failed to seed report: %v", err)
	}
	return report
}

func TestCreate_AssignsIncreasingIDs(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()

	first := seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "A", now)
	second := seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "B", now)

	if first.ID == 0 || second.ID == 0 {
		t.Fatal("Expected ids to be assigned on insert")
	}
	if second.ID <= first.ID {
		t.Errorf("Expected increasing ids, got %d then %d", first.ID, second.ID)
	}
}

func TestQuery_RoundTripNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().UTC()

	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "Old Town", base.Add(-time.Hour))
	newest := seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "New Town", base)

	reports := repo.Query(QueryFilter{})
	if len(reports) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID != newest.ID {
		t.Errorf("Expected the newest report first, got id %d", reports[0].ID)
	}
}

func TestQuery_StatusFilter(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().UTC()

	seedReport(t, repo, models.StatusResolved, models.UrgencyNormal, "A", base.Add(-2*time.Minute))
	seedReport(t, repo, models.StatusResolved, models.UrgencyUrgent, "B", base.Add(-time.Minute))
	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "C", base)

	reports := repo.Query(QueryFilter{Status: models.StatusResolved, Urgency: models.FilterAll})
	if len(reports) != 2 {
		t.Fatalf("Expected exactly the 2 resolved reports, got %d", len(reports))
	}
	for _, report := range reports {
		if report.Status != models.StatusResolved {
			t.Errorf("Expected only resolved reports, got %q", report.Status)
		}
	}
	if !reports[0].CreatedAt.After(reports[1].CreatedAt) {
		t.Error("Expected resolved reports ordered newest first")
	}
}

func TestQuery_AllSentinelDisablesPredicates(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()

	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "A", now)
	seedReport(t, repo, models.StatusVerified, models.UrgencyUrgent, "B", now)

	for _, filter := range []QueryFilter{
		{},
		{Status: models.FilterAll, Urgency: models.FilterAll},
	} {
		if got := len(repo.Query(filter)); got != 2 {
			t.Errorf("Expected filter %+v to match all reports, got %d", filter, got)
		}
	}
}

func TestQuery_BoundingBoxNarrowsCandidates(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()

	near := seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "Mangalore", now)
	far := &models.Report{
		Phone: "1098", Message: "far away", Status: models.StatusPending,
		Urgency: models.UrgencyNormal, Location: "Delhi", CreatedAt: now,
	}
	far.Latitude, far.Longitude = coords(28.6139, 77.2090)
	if err := repo.Create(far); err != nil {
		t.Fatalf("Failed to create far report: %v", err)
	}

	reports := repo.Query(QueryFilter{
		Around:   &geo.Point{Lat: 12.9141, Lon: 74.8560},
		RadiusKm: 50,
	})
	if len(reports) != 1 {
		t.Fatalf("Expected bounding box to keep only the nearby report, got %d", len(reports))
	}
	if reports[0].ID != near.ID {
		t.Errorf("Expected report %d, got %d", near.ID, reports[0].ID)
	}
}

func TestUpdateStatus_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	report := seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "A", time.Now().UTC())

	for i := 0; i < 2; i++ {
		if err := repo.UpdateStatus(report.ID, models.StatusVerified); err != nil {
			t.Fatalf("Update %d failed: %v", i+1, err)
		}
	}

	updated, err := repo.FindByID(report.ID)
	if err != nil {
		t.Fatalf("Failed to reload report: %v", err)
	}
	if updated.Status != models.StatusVerified {
		t.Errorf("Expected status Verified after repeated updates, got %q", updated.Status)
	}
}

func TestUpdateStatus_UnknownIDIsSilentNoOp(t *testing.T) {
	repo := newTestRepo(t)
	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "A", time.Now().UTC())

	if err := repo.UpdateStatus(9999, models.StatusResolved); err != nil {
		t.Errorf("Expected unknown id to be a silent no-op, got error: %v", err)
	}
	if count := repo.Count(); count != 1 {
		t.Errorf("Expected store unchanged, got %d reports", count)
	}
}

func TestBrokenStore_ReadsDegradeAndWritesSurface(t *testing.T) {
	repo, db := newTestRepoDB(t)
	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "A", time.Now().UTC())

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying connection: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("Failed to close underlying connection: %v", err)
	}

	if reports := repo.Query(QueryFilter{}); len(reports) != 0 {
		t.Errorf("Expected a broken store to yield an empty listing, got %d reports", len(reports))
	}
	if counts := repo.CountByLocation(); len(counts) != 0 {
		t.Errorf("Expected a broken store to yield empty location counts, got %v", counts)
	}
	if count := repo.Count(); count != 0 {
		t.Errorf("Expected a broken store to yield a zero count, got %d", count)
	}

	var persistence *errs.PersistenceError
	if err := repo.Create(&models.Report{Phone: "1098", Message: "test", Status: models.StatusPending}); !errors.As(err, &persistence) {
		t.Errorf("Expected insert on a broken store to surface a persistence error, got %v", err)
	}
	if err := repo.UpdateStatus(1, models.StatusVerified); !errors.As(err, &persistence) {
		t.Errorf("Expected status update on a broken store to surface a persistence error, got %v", err)
	}
	if _, err := repo.FindByID(1); !errors.As(err, &persistence) {
		t.Errorf("Expected lookup on a broken store to surface a persistence error, got %v", err)
	}
}

func TestFindByID_UnknownIDIsNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindByID(9999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected gorm.ErrRecordNotFound for an unknown id, got %v", err)
	}
}

func TestCountByLocation_ExactStringGrouping(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()

	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "X", now)
	seedReport(t, repo, models.StatusVerified, models.UrgencyUrgent, "X", now)
	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "x", now) // different string, no folding
	seedReport(t, repo, models.StatusPending, models.UrgencyNormal, "Y", now)

	counts := repo.CountByLocation()
	if counts["X"] != 2 {
		t.Errorf("Expected 2 reports at X, got %d", counts["X"])
	}
	if counts["x"] != 1 {
		t.Errorf("Expected case-sensitive grouping to keep x separate, got %d", counts["x"])
	}
	if counts["Y"] != 1 {
		t.Errorf("Expected 1 report at Y, got %d", counts["Y"])
	}
}
