package database

import (
	"context"
	"database/sql"
	"fmt" // For error wrapping
	"strings"

	"viber_notification_bot/internal/domain/subscriber"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrSubscriberNotFound = fmt.Errorf("subscriber not found")
var ErrDuplicateViberID = fmt.Errorf("subscriber with this Viber ID already exists")

type PostgresSubscriberRepository struct {
	db *sql.DB
}

func NewPostgresSubscriberRepository(db *sql.DB) *PostgresSubscriberRepository {
	return &PostgresSubscriberRepository{db: db}
}

func (r *PostgresSubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	query := `INSERT INTO subscribers (viber_id, name, avatar, is_active)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, s.ViberID, s.Name, s.Avatar, s.IsActive).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		// Basic check for unique violation on viber_id.
		if strings.Contains(err.Error(), "unique constraint") && strings.Contains(err.Error(), "subscribers_viber_id_key") {
			return ErrDuplicateViberID
		}
		return fmt.Errorf("error creating subscriber: %w", err)
	}
	return nil
}

func (r *PostgresSubscriberRepository) GetByID(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	query := `SELECT id, viber_id, name, avatar, is_active, created_at, updated_at
               FROM subscribers WHERE id = $1`
	s := &subscriber.Subscriber{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.ViberID, &s.Name, &s.Avatar, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("error getting subscriber by ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriberRepository) GetByViberID(ctx context.Context, viberID string) (*subscriber.Subscriber, error) {
	query := `SELECT id, viber_id, name, avatar, is_active, created_at, updated_at
               FROM subscribers WHERE viber_id = $1`
	s := &subscriber.Subscriber{}
	err := r.db.QueryRowContext(ctx, query, viberID).Scan(&s.ID, &s.ViberID, &s.Name, &s.Avatar, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("error getting subscriber by Viber ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	query := `UPDATE subscribers
               SET name = $1, avatar = $2, is_active = $3, updated_at = NOW()
               WHERE id = $4
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, s.Name, s.Avatar, s.IsActive, s.ID).Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows { // Should not happen if ID is valid, but good check
			return ErrSubscriberNotFound
		}
		return fmt.Errorf("error updating subscriber: %w", err)
	}
	return nil
}

func (r *PostgresSubscriberRepository) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT id, viber_id, name, avatar, is_active, created_at, updated_at
               FROM subscribers WHERE is_active = TRUE ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]*subscriber.Subscriber, 0)
	for rows.Next() {
		s := &subscriber.Subscriber{}
		if err := rows.Scan(&s.ID, &s.ViberID, &s.Name, &s.Avatar, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning active subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active subscribers: %w", err)
	}
	return subscribers, nil
}

func (r *PostgresSubscriberRepository) ListAll(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT id, viber_id, name, avatar, is_active, created_at, updated_at
               FROM subscribers ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing all subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]*subscriber.Subscriber, 0)
	for rows.Next() {
		s := &subscriber.Subscriber{}
		if err := rows.Scan(&s.ID, &s.ViberID, &s.Name, &s.Avatar, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subscriber from all list: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating all subscribers: %w", err)
	}
	return subscribers, nil
}
