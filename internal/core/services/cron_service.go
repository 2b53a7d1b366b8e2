package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService schedules the background housekeeping jobs
type CronService struct {
	cron     *cron.Cron
	notifier *NotificationService
	resets   *PasswordResetService
}

// NewCronService creates a new cron service. verbose enables cron's own job logging.
func NewCronService(notifier *NotificationService, resets *PasswordResetService, verbose bool) *CronService {
	var c *cron.Cron
	if verbose {
		c = cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))
	} else {
		c = cron.New()
	}
	return &CronService{
		cron:     c,
		notifier: notifier,
		resets:   resets,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	jobs := []struct {
		spec string
		fn   func()
	}{
		{"@every 30s", s.dispatchNotifications},
		{"@every 1m", s.releaseStaleClaims},
		{"@every 5m", s.sweepResetTokens},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Println("⏰ CronService started")
	return nil
}

// Stop stops scheduling and waits for running jobs, bounded by ctx
func (s *CronService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Println("🛑 CronService stopped")
	case <-ctx.Done():
		log.Println("⚠️ CronService stop timed out")
	}
}

func (s *CronService) dispatchNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if n, err := s.notifier.DispatchDue(ctx); err != nil {
		log.Printf("❌ Notification dispatch failed: %v", err)
	} else if n > 0 {
		log.Printf("📧 Dispatched %d pending notifications", n)
	}
}

func (s *CronService) releaseStaleClaims() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.notifier.ReleaseStale(ctx); err != nil {
		log.Printf("❌ Releasing stale notifications failed: %v", err)
	}
}

func (s *CronService) sweepResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.resets.SweepExpired(ctx); err != nil {
		log.Printf("❌ Reset token sweep failed: %v", err)
	}
}
