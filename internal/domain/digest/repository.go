// internal/domain/digest/repository.go
package digest

import (
	"context"
	"time"
)

// Repository defines operations for digest Run records.
type Repository interface {
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id int64) (*Run, error)
	// GetByDate fetches the run for a calendar date, used for idempotency:
	// a date with an existing run must not be broadcast again.
	GetByDate(ctx context.Context, runDate time.Time) (*Run, error)
	Update(ctx context.Context, run *Run) error
	ListRecent(ctx context.Context, limit int) ([]*Run, error) // For admin/overview
}
