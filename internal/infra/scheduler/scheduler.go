package scheduler

import (
	"context"
	"log"
	"time"

	"viber_notification_bot/internal/app" // For DigestService interface

	"github.com/robfig/cron/v3"
)

type DigestScheduler struct {
	cronEngine     *cron.Cron
	digestService  app.DigestService // Using the interface
	logger         *log.Logger
	cronSpecDigest string
}

func NewDigestScheduler(
	digestService app.DigestService,
	logger *log.Logger,
	cronSpecDigest string, // e.g., "0 9 * * *" (9:00 AM daily)
) *DigestScheduler {
	return &DigestScheduler{
		cronEngine:     cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		digestService:  digestService,
		logger:         logger,
		cronSpecDigest: cronSpecDigest,
	}
}

func (s *DigestScheduler) Start() {
	s.logger.Println("INFO: Starting digest scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDigest, func() {
		s.logger.Println("INFO: Cron job triggered for daily digest.")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute) // Context for the job
		defer cancel()
		if err := s.digestService.SendDailyDigest(ctx); err != nil {
			s.logger.Printf("ERROR: Error during daily digest delivery: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add daily digest cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Println("INFO: Digest scheduler started with jobs.")
}

func (s *DigestScheduler) Stop() {
	s.logger.Println("INFO: Stopping digest scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Println("INFO: Digest scheduler gracefully stopped.")
}
