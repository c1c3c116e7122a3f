package scheduler

import (
	"context"
	"fmt"
	"time"

	"soup_menu_bot/internal/app" // For NotificationService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultJobTimeout bounds one broadcast run.
const DefaultJobTimeout = 5 * time.Minute

type DailySoupScheduler struct {
	cronEngine   *cron.Cron
	notifService app.NotificationService
	logger       *logrus.Entry
	cronSpec     string
	jobTimeout   time.Duration
}

func NewDailySoupScheduler(
	notifService app.NotificationService,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 12 * * 1-5" (12:00 on weekdays)
	loc *time.Location,
) *DailySoupScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &DailySoupScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			// A slow broadcast must not overlap with the next firing.
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		notifService: notifService,
		logger:       logger,
		cronSpec:     cronSpec,
		jobTimeout:   DefaultJobTimeout,
	}
}

func (s *DailySoupScheduler) Start() error {
	s.logger.Info("Starting daily soup scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce); err != nil {
		return fmt.Errorf("could not add daily soup cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Daily soup scheduler started.")
	return nil
}

// RunOnce performs one broadcast, as the cron job does.
func (s *DailySoupScheduler) RunOnce() {
	s.logger.Info("Cron job triggered for daily soup broadcast.")
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	report, err := s.notifService.BroadcastDailySoup(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error during daily soup broadcast")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"recipients": report.Recipients,
		"delivered":  report.Delivered,
		"removed":    report.Removed,
		"failed":     report.Failed,
	}).Info("Daily soup broadcast completed.")
}

func (s *DailySoupScheduler) Stop() {
	s.logger.Info("Stopping daily soup scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Daily soup scheduler gracefully stopped.")
}
