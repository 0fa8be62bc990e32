// Package storage persists the attempt journal: one row per pipeline run,
// served by the status endpoint. The journal is operational history only;
// duplicate decisions come from the in-memory publish history, never from
// here.
package storage

import (
	"context"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	RecordAttempt(ctx context.Context, rec *model.AttemptRecord) error
	ListRecentAttempts(ctx context.Context, limit int) ([]model.AttemptRecord, error)
	LastPublished(ctx context.Context) (*model.AttemptRecord, error)

	Close() error
}
