package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"yad2_scraper/models"
)

// SQLiteStore keeps operational data locally: run records and their logs.
// Lead data lives in Postgres; this file never leaves the host.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		run_key TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER DEFAULT 0,
		private_today INTEGER DEFAULT 0,
		leads_saved INTEGER DEFAULT 0,
		phones_resolved INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		FOREIGN KEY (run_id) REFERENCES scrape_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON scrape_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO scrape_runs (run_key, user_id, started_at, status) VALUES (?, ?, ?, ?)`,
		run.RunKey, run.UserID, run.StartedAt, run.Status,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(
		`UPDATE scrape_runs SET
			finished_at = ?, status = ?, listings_found = ?, private_today = ?,
			leads_saved = ?, phones_resolved = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.PrivateToday,
		run.LeadsSaved, run.PhonesResolved, run.ErrorsCount, run.ID,
	)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message string) error {
	_, err := s.db.Exec(
		`INSERT INTO scrape_logs (run_id, timestamp, level, message) VALUES (?, ?, ?, ?)`,
		runID, time.Now(), level, message,
	)
	return err
}

// GetLastRunTime reports when the pipeline last started for a user; zero
// time when it never has.
func (s *SQLiteStore) GetLastRunTime(userID int64) (time.Time, error) {
	var startedAt sql.NullTime
	err := s.db.QueryRow(
		`SELECT MAX(started_at) FROM scrape_runs WHERE user_id = ?`, userID,
	).Scan(&startedAt)
	if err != nil || !startedAt.Valid {
		return time.Time{}, err
	}
	return startedAt.Time, nil
}
