package scheduler_test

import (
	"testing"

	"rentshare-backend/internal/config"
	"rentshare-backend/internal/jobs"
	"rentshare-backend/internal/scheduler"

	"github.com/stretchr/testify/assert"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Registers every job", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			RetryPendingSettlements:  "0 */15 * * * *",
			RetryDepositRefunds:      "0 0 * * * *",
			RetryCancellationRefunds: "0 30 * * * *",
		}}
		s := scheduler.NewScheduler(jobs.NewJobRunner(nil, &jobs.Services{}, cfg))
		assert.Equal(t, 3, s.EntryCount())
	})

	t.Run("Skips invalid schedule", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			RetryPendingSettlements:  "every now and then",
			RetryDepositRefunds:      "0 0 * * * *",
			RetryCancellationRefunds: "0 30 * * * *",
		}}
		s := scheduler.NewScheduler(jobs.NewJobRunner(nil, &jobs.Services{}, cfg))
		assert.Equal(t, 2, s.EntryCount())
	})

	t.Run("Start and stop", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			RetryPendingSettlements:  "0 */15 * * * *",
			RetryDepositRefunds:      "0 0 * * * *",
			RetryCancellationRefunds: "0 30 * * * *",
		}}
		s := scheduler.NewScheduler(jobs.NewJobRunner(nil, &jobs.Services{}, cfg))
		s.Start()
		s.Stop()
	})
}
