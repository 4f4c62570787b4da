package digest

import (
	"database/sql"
	"time"
)

// Status represents the delivery state of a digest run.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Run represents a single daily digest delivery (one per calendar date).
// Corresponds to the 'digest_runs' table.
type Run struct {
	ID           int64
	RunDate      time.Time // Normalized to midnight; one run per date
	Status       Status
	Recipients   int           // Number of receivers the digest was broadcast to
	MessageToken sql.NullInt64 // Token of the last broadcast reported by the platform
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
