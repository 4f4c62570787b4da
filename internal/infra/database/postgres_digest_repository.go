package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"viber_notification_bot/internal/domain/digest"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var ErrRunNotFound = fmt.Errorf("digest run not found")

type PostgresDigestRepository struct {
	db *sql.DB
}

func NewPostgresDigestRepository(db *sql.DB) *PostgresDigestRepository {
	return &PostgresDigestRepository{db: db}
}

func (r *PostgresDigestRepository) Create(ctx context.Context, run *digest.Run) error {
	query := `INSERT INTO digest_runs (run_date, status, recipients, message_token)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, run.RunDate, run.Status, run.Recipients, run.MessageToken).
		Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating digest run: %w", err)
	}
	return nil
}

func (r *PostgresDigestRepository) GetByID(ctx context.Context, id int64) (*digest.Run, error) {
	query := `SELECT id, run_date, status, recipients, message_token, created_at, updated_at
               FROM digest_runs WHERE id = $1`
	run := &digest.Run{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&run.ID, &run.RunDate, &run.Status, &run.Recipients, &run.MessageToken, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("error getting digest run by ID: %w", err)
	}
	return run, nil
}

func (r *PostgresDigestRepository) GetByDate(ctx context.Context, runDate time.Time) (*digest.Run, error) {
	query := `SELECT id, run_date, status, recipients, message_token, created_at, updated_at
               FROM digest_runs WHERE run_date = $1`
	run := &digest.Run{}
	err := r.db.QueryRowContext(ctx, query, runDate).
		Scan(&run.ID, &run.RunDate, &run.Status, &run.Recipients, &run.MessageToken, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("error getting digest run by date: %w", err)
	}
	return run, nil
}

func (r *PostgresDigestRepository) Update(ctx context.Context, run *digest.Run) error {
	query := `UPDATE digest_runs
               SET status = $1, recipients = $2, message_token = $3, updated_at = NOW()
               WHERE id = $4
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, run.Status, run.Recipients, run.MessageToken, run.ID).Scan(&run.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRunNotFound
		}
		return fmt.Errorf("error updating digest run: %w", err)
	}
	return nil
}

func (r *PostgresDigestRepository) ListRecent(ctx context.Context, limit int) ([]*digest.Run, error) {
	query := `SELECT id, run_date, status, recipients, message_token, created_at, updated_at
               FROM digest_runs ORDER BY run_date DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing recent digest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*digest.Run, 0)
	for rows.Next() {
		run := &digest.Run{}
		if err := rows.Scan(&run.ID, &run.RunDate, &run.Status, &run.Recipients, &run.MessageToken, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning digest run: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating digest runs: %w", err)
	}
	return runs, nil
}
