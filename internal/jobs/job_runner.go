package jobs

import (
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/service"
)

const defaultBatchSize = 100

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookingRepo repository.BookingRepository
	services    *Services
	config      *config.Config
	batchSize   int32
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Booking    service.BookingService
	Settlement service.SettlementService
}

// JobResult summarizes one run over a batch of bookings.
type JobResult struct {
	Processed int
	Succeeded int
	Failed    int
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookingRepo repository.BookingRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		bookingRepo: bookingRepo,
		services:    services,
		config:      cfg,
		batchSize:   defaultBatchSize,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.RetryPendingSettlements()
	jr.RetryDepositRefunds()
	jr.RetryCancellationRefunds()
}
