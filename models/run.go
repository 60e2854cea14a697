package models

import (
	"time"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ScrapeRun is one pipeline execution for one subscriber.
type ScrapeRun struct {
	ID             int64      `json:"id" db:"id"`
	RunKey         string     `json:"run_key" db:"run_key"` // uuid, correlates logs and archives
	UserID         int64      `json:"user_id" db:"user_id"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at" db:"finished_at"`
	Status         RunStatus  `json:"status" db:"status"`
	ListingsFound  int        `json:"listings_found" db:"listings_found"`
	PrivateToday   int        `json:"private_today" db:"private_today"`
	LeadsSaved     int        `json:"leads_saved" db:"leads_saved"`
	PhonesResolved int        `json:"phones_resolved" db:"phones_resolved"`
	ErrorsCount    int        `json:"errors_count" db:"errors_count"`
}

// ScrapeLog is one operational log line tied to a run.
type ScrapeLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
}
