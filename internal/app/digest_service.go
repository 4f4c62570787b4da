// internal/app/digest_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"viber_notification_bot/internal/domain/digest"
	"viber_notification_bot/internal/domain/messenger"
	"viber_notification_bot/internal/domain/subscriber"
	idb "viber_notification_bot/internal/infra/database" // Alias for DB errors
	"viber_notification_bot/pkg/viber"

	"github.com/google/uuid"
)

// DigestService defines the operations for delivering the daily digest.
type DigestService interface {
	// SendDailyDigest broadcasts the digest to all active subscribers.
	// At most one digest run exists per calendar date; repeated invocations
	// on the same date are no-ops.
	SendDailyDigest(ctx context.Context) error
}

// DigestServiceImpl implements the DigestService interface.
type DigestServiceImpl struct {
	subscriberRepo subscriber.Repository
	runRepo        digest.Repository
	viberClient    messenger.Client
	logger         *log.Logger
	digestText     string
}

func NewDigestServiceImpl(
	sr subscriber.Repository,
	rr digest.Repository,
	vc messenger.Client,
	logger *log.Logger,
	digestText string,
) *DigestServiceImpl {
	return &DigestServiceImpl{
		subscriberRepo: sr,
		runRepo:        rr,
		viberClient:    vc,
		logger:         logger,
		digestText:     digestText,
	}
}

// SendDailyDigest runs the full digest workflow for today.
func (s *DigestServiceImpl) SendDailyDigest(ctx context.Context) error {
	today := time.Now()
	// Normalize to just the date part for run idempotency
	runDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	existing, err := s.runRepo.GetByDate(ctx, runDate)
	if err == nil {
		s.logger.Printf("INFO: Digest run for %s already exists (ID: %d, Status: %s). Skipping.",
			runDate.Format("2006-01-02"), existing.ID, existing.Status)
		return nil
	}
	if err != idb.ErrRunNotFound {
		s.logger.Printf("ERROR: Failed to check for existing digest run: %v", err)
		return fmt.Errorf("failed to check for existing digest run: %w", err)
	}

	run := &digest.Run{
		RunDate: runDate,
		Status:  digest.StatusPending,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.Printf("ERROR: Failed to create digest run: %v", err)
		return fmt.Errorf("failed to create digest run: %w", err)
	}
	s.logger.Printf("INFO: New digest run created with ID: %d", run.ID)

	activeSubscribers, err := s.subscriberRepo.ListActive(ctx)
	if err != nil {
		s.logger.Printf("ERROR: Failed to list active subscribers: %v", err)
		s.markRunFailed(ctx, run)
		return fmt.Errorf("failed to list active subscribers: %w", err)
	}
	if len(activeSubscribers) == 0 {
		s.logger.Println("INFO: No active subscribers found. Digest run completes empty.")
		run.Status = digest.StatusSent
		if errUpdate := s.runRepo.Update(ctx, run); errUpdate != nil {
			s.logger.Printf("ERROR: Failed to finalize empty digest run %d: %v", run.ID, errUpdate)
		}
		return nil
	}
	s.logger.Printf("INFO: Found %d active subscribers.", len(activeSubscribers))

	receivers := make([]string, 0, len(activeSubscribers))
	for _, sub := range activeSubscribers {
		receivers = append(receivers, sub.ViberID)
	}

	trackingData := map[string]interface{}{
		"digest_id": uuid.NewString(),
		"run_date":  runDate.Format("2006-01-02"),
	}
	msg := viber.TextMessage{Text: s.digestText}

	// The platform caps a broadcast list at MaxBroadcastReceivers, so the
	// subscriber list is delivered in chunks of that size.
	var sent int
	var lastToken int64
	for start := 0; start < len(receivers); start += viber.MaxBroadcastReceivers {
		end := start + viber.MaxBroadcastReceivers
		if end > len(receivers) {
			end = len(receivers)
		}
		chunk := receivers[start:end]

		resp, err := s.viberClient.BroadcastMessage(ctx, chunk, msg, &viber.BroadcastOptions{TrackingData: trackingData})
		if err != nil {
			s.logger.Printf("ERROR: Failed to broadcast digest chunk (%d receivers, %d already sent): %v", len(chunk), sent, err)
			run.Recipients = sent
			s.markRunFailed(ctx, run)
			return fmt.Errorf("failed to broadcast digest chunk: %w", err)
		}
		sent += len(chunk)
		if resp.MessageToken != 0 {
			lastToken = resp.MessageToken
		}
		s.logger.Printf("INFO: Broadcast digest chunk of %d receivers (message token: %d).", len(chunk), resp.MessageToken)
	}

	run.Status = digest.StatusSent
	run.Recipients = sent
	run.MessageToken = sql.NullInt64{Int64: lastToken, Valid: lastToken != 0}
	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Printf("ERROR: Failed to finalize digest run %d: %v", run.ID, err)
		return fmt.Errorf("failed to finalize digest run: %w", err)
	}

	s.logger.Printf("INFO: Daily digest sent to %d subscribers.", sent)
	return nil
}

func (s *DigestServiceImpl) markRunFailed(ctx context.Context, run *digest.Run) {
	run.Status = digest.StatusFailed
	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Printf("ERROR: Failed to mark digest run %d as failed: %v", run.ID, err)
	}
}
