package subscriber

import (
	"database/sql"
	"time"
)

// Subscriber represents a Viber user who opted in to receive notifications.
type Subscriber struct {
	ID        int64
	ViberID   string         // Viber user id, an opaque string assigned by the platform
	Name      string
	Avatar    sql.NullString // To handle users without an avatar
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
