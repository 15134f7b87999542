package jobs

import (
	"context"
	"time"

	"rentshare-backend/internal/logger"
)

const jobTimeout = 10 * time.Minute

// RetryPendingSettlements re-runs completion for bookings whose return was
// confirmed by both parties but whose settlement failed.
func (jr *JobRunner) RetryPendingSettlements() {
	jr.runWithRecovery("RetryPendingSettlements", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		res := jr.SettlePending(ctx)
		logger.Info("Pending settlements retried", "processed", res.Processed, "completed", res.Succeeded, "failed", res.Failed)
	})
}

// SettlePending completes one batch of bookings awaiting settlement.
func (jr *JobRunner) SettlePending(ctx context.Context) JobResult {
	var res JobResult
	bookings, err := jr.bookingRepo.ListAwaitingSettlement(ctx, jr.batchSize)
	if err != nil {
		logger.Error("Failed to list bookings awaiting settlement", "error", err)
		return res
	}

	for _, b := range bookings {
		if ctx.Err() != nil {
			break
		}
		res.Processed++
		if _, _, err := jr.services.Booking.CompleteBooking(ctx, b.ID); err != nil {
			res.Failed++
			logger.Warn("Settlement retry failed", "bookingID", b.ID, "error", err)
			continue
		}
		res.Succeeded++
	}
	return res
}

// RetryDepositRefunds retries deposit refunds that failed during settlement.
func (jr *JobRunner) RetryDepositRefunds() {
	jr.runWithRecovery("RetryDepositRefunds", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		res := jr.RetryRefunds(ctx)
		logger.Info("Deposit refunds retried", "processed", res.Processed, "refunded", res.Succeeded, "failed", res.Failed)
	})
}

// RetryRefunds retries one batch of failed deposit refunds. A refund that
// is skipped counts as succeeded; the booking leaves the retry set either way.
func (jr *JobRunner) RetryRefunds(ctx context.Context) JobResult {
	var res JobResult
	bookings, err := jr.bookingRepo.ListRefundRetry(ctx, jr.batchSize)
	if err != nil {
		logger.Error("Failed to list bookings needing a deposit refund", "error", err)
		return res
	}

	for _, b := range bookings {
		if ctx.Err() != nil {
			break
		}
		res.Processed++
		out, err := jr.services.Settlement.RetryDepositRefund(ctx, b.ID)
		if err != nil {
			res.Failed++
			logger.Warn("Deposit refund retry failed", "bookingID", b.ID, "error", err)
			continue
		}
		if out != nil && out.RefundError != "" {
			res.Failed++
			logger.Warn("Deposit refund still failing", "bookingID", b.ID, "error", out.RefundError)
			continue
		}
		res.Succeeded++
	}
	return res
}

// RetryCancellationRefunds retries refunds owed on cancelled bookings.
func (jr *JobRunner) RetryCancellationRefunds() {
	jr.runWithRecovery("RetryCancellationRefunds", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		res := jr.RefundCancellations(ctx)
		logger.Info("Cancellation refunds retried", "processed", res.Processed, "refunded", res.Succeeded, "failed", res.Failed)
	})
}

// RefundCancellations retries one batch of owed cancellation refunds.
func (jr *JobRunner) RefundCancellations(ctx context.Context) JobResult {
	var res JobResult
	bookings, err := jr.bookingRepo.ListCancellationRefundRetry(ctx, jr.batchSize)
	if err != nil {
		logger.Error("Failed to list bookings owed a cancellation refund", "error", err)
		return res
	}

	for _, b := range bookings {
		if ctx.Err() != nil {
			break
		}
		res.Processed++
		out, err := jr.services.Booking.RetryCancellationRefund(ctx, b.ID)
		if err != nil {
			res.Failed++
			logger.Warn("Cancellation refund retry failed", "bookingID", b.ID, "error", err)
			continue
		}
		if out.RefundRef == nil {
			res.Failed++
			logger.Warn("Cancellation refund still failing", "bookingID", b.ID, "error", out.LastError)
			continue
		}
		res.Succeeded++
	}
	return res
}
