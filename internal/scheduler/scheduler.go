package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"rentshare-backend/internal/jobs"
	"rentshare-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		// A slow settlement run must not overlap the next tick.
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	_, err := s.cron.AddFunc(cfg.RetryPendingSettlements, s.jobs.RetryPendingSettlements)
	if err != nil {
		logger.Error("Failed to register RetryPendingSettlements job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.RetryDepositRefunds, s.jobs.RetryDepositRefunds)
	if err != nil {
		logger.Error("Failed to register RetryDepositRefunds job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.RetryCancellationRefunds, s.jobs.RetryCancellationRefunds)
	if err != nil {
		logger.Error("Failed to register RetryCancellationRefunds job", "error", err)
	}

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// EntryCount returns how many jobs were registered
func (s *Scheduler) EntryCount() int {
	return len(s.cron.Entries())
}
