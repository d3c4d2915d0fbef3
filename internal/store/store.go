// Package store keeps the applied-job history in SQLite so repeated runs
// never apply to the same posting twice.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jobpilot/pkg/models"
)

// Store is the history database handle.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company TEXT NOT NULL,
		job_title TEXT NOT NULL,
		apply_link TEXT NOT NULL,
		status TEXT NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_apply_link
		ON applications(apply_link) WHERE apply_link != '';
	`
	_, err := s.db.Exec(schema)
	return err
}

// MarkApplied records an attempt for the job. Re-recording the same
// apply link updates the status instead of duplicating the row.
func (s *Store) MarkApplied(job models.JobPosting, status string) error {
	if job.ApplyLink == "" {
		_, err := s.db.Exec(
			`INSERT INTO applications (company, job_title, apply_link, status) VALUES (?, ?, '', ?)`,
			job.Company, job.Title, status)
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO applications (company, job_title, apply_link, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(apply_link) WHERE apply_link != ''
		DO UPDATE SET status = excluded.status, applied_at = CURRENT_TIMESTAMP`,
		job.Company, job.Title, job.ApplyLink, status)
	return err
}

// HasApplied reports whether this apply link was attempted before. Jobs
// without a link cannot be tracked and always return false.
func (s *Store) HasApplied(applyLink string) (bool, error) {
	if applyLink == "" {
		return false, nil
	}
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM applications WHERE apply_link = ?`, applyLink).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HistoryEntry is one remembered application attempt.
type HistoryEntry struct {
	Company   string
	JobTitle  string
	ApplyLink string
	Status    string
	AppliedAt time.Time
}

// Recent returns the newest attempts, most recent first.
func (s *Store) Recent(limit int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT company, job_title, apply_link, status, applied_at
		FROM applications ORDER BY applied_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Company, &e.JobTitle, &e.ApplyLink, &e.Status, &e.AppliedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
