package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"github.com/faruk-isik/x-trend-bot/internal/model"
	"github.com/faruk-isik/x-trend-bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// RecordAttempt inserts a journal row and populates its ID and CreatedAt.
func (s *SQLite) RecordAttempt(ctx context.Context, rec *model.AttemptRecord) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (run_trigger, outcome, attempts_used, published_text, published_id, diagnostic, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Trigger), string(rec.Outcome), rec.AttemptsUsed,
		rec.PublishedText, rec.PublishedID, rec.Diagnostic, now,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// ListRecentAttempts returns up to limit journal rows, newest first.
func (s *SQLite) ListRecentAttempts(ctx context.Context, limit int) ([]model.AttemptRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_trigger, outcome, attempts_used, published_text, published_id, diagnostic, created_at
		 FROM attempts ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []model.AttemptRecord
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// LastPublished returns the most recent successfully published attempt, or
// nil when nothing was ever published.
func (s *SQLite) LastPublished(ctx context.Context) (*model.AttemptRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_trigger, outcome, attempts_used, published_text, published_id, diagnostic, created_at
		 FROM attempts WHERE outcome = ? ORDER BY id DESC LIMIT 1`,
		string(model.OutcomePublished),
	)
	rec, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (*model.AttemptRecord, error) {
	var rec model.AttemptRecord
	var trigger, outcome, createdAt string
	err := row.Scan(&rec.ID, &trigger, &outcome, &rec.AttemptsUsed,
		&rec.PublishedText, &rec.PublishedID, &rec.Diagnostic, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan attempt: %w", err)
	}
	rec.Trigger = model.Trigger(trigger)
	rec.Outcome = model.Outcome(outcome)
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &rec, nil
}
