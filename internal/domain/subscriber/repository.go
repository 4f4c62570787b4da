package subscriber

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Subscriber entities.
type Repository interface {
	Create(ctx context.Context, sub *Subscriber) error
	GetByID(ctx context.Context, id int64) (*Subscriber, error)
	GetByViberID(ctx context.Context, viberID string) (*Subscriber, error)
	Update(ctx context.Context, sub *Subscriber) error // Handles updates to Name, Avatar, IsActive
	ListActive(ctx context.Context) ([]*Subscriber, error)
	ListAll(ctx context.Context) ([]*Subscriber, error) // For admin purposes
}
