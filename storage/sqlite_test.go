package storage

import (
	"path/filepath"
	"testing"
	"time"

	"yad2_scraper/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run := &models.ScrapeRun{
		RunKey:    "run-abc",
		UserID:    7,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}

	id, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a row id")
	}
	run.ID = id

	finished := time.Now()
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	run.ListingsFound = 12
	run.PrivateToday = 3
	run.LeadsSaved = 2
	run.PhonesResolved = 2
	run.ErrorsCount = 1

	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("UpdateRun: %v", err)
	}

	var status string
	var leadsSaved int
	err = store.db.QueryRow(
		`SELECT status, leads_saved FROM scrape_runs WHERE id = ?`, id,
	).Scan(&status, &leadsSaved)
	if err != nil {
		t.Fatalf("query run: %v", err)
	}
	if status != string(models.RunStatusCompleted) || leadsSaved != 2 {
		t.Fatalf("run not persisted: status=%s leads=%d", status, leadsSaved)
	}
}

func TestRunLogs(t *testing.T) {
	store := newTestStore(t)

	run := &models.ScrapeRun{RunKey: "run-x", UserID: 1, StartedAt: time.Now(), Status: models.RunStatusRunning}
	id, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	if err := store.Log(&id, models.LogLevelInfo, "found 5 listings"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := store.Log(nil, models.LogLevelWarn, "orphan message"); err != nil {
		t.Fatalf("Log without run: %v", err)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM scrape_logs WHERE run_id = ?`, id).Scan(&count); err != nil {
		t.Fatalf("query logs: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 log for run, got %d", count)
	}
}

func TestGetLastRunTime(t *testing.T) {
	store := newTestStore(t)

	when, err := store.GetLastRunTime(42)
	if err != nil {
		t.Fatalf("GetLastRunTime: %v", err)
	}
	if !when.IsZero() {
		t.Fatalf("expected zero time for unknown user, got %s", when)
	}

	earlier := time.Now().Add(-2 * time.Hour)
	later := time.Now().Add(-1 * time.Hour)
	for _, started := range []time.Time{earlier, later} {
		if _, err := store.CreateRun(&models.ScrapeRun{
			RunKey: "r", UserID: 42, StartedAt: started, Status: models.RunStatusCompleted,
		}); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	when, err = store.GetLastRunTime(42)
	if err != nil {
		t.Fatalf("GetLastRunTime: %v", err)
	}
	if when.Sub(later) > time.Second || later.Sub(when) > time.Second {
		t.Fatalf("expected most recent start, got %s want ~%s", when, later)
	}
}
