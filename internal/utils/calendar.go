package utils

import (
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
)

const (
	DateLayout = "2006-01-02"

	DefaultMaxFutureDays   = 365
	DefaultMaxDurationDays = 365
)

// ParseDate converts a yyyy-mm-dd string into a UTC midnight time.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", err)
	}
	return t, nil
}

// FormatDate renders a date as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateDuration returns the number of days in [start, end], counting
// both boundary dates. It returns 0 when end is before start.
func CalculateDuration(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return 0
	}
	// Calendar arithmetic on UTC dates, so every day is exactly 24h.
	return int(e.Sub(s).Hours()/24) + 1
}

// DateSequence lists every date in [start, end].
func DateSequence(start, end time.Time) []time.Time {
	n := CalculateDuration(start, end)
	dates := make([]time.Time, 0, n)
	s := DateOnly(start)
	for i := 0; i < n; i++ {
		dates = append(dates, s.AddDate(0, 0, i))
	}
	return dates
}

// ValidateDateRange checks a requested booking range against today and the
// booking horizon. It returns human-readable problems, empty when valid.
func ValidateDateRange(start, end, today time.Time, maxFutureDays int) []string {
	if maxFutureDays <= 0 {
		maxFutureDays = DefaultMaxFutureDays
	}
	s, e, now := DateOnly(start), DateOnly(end), DateOnly(today)
	horizon := now.AddDate(0, 0, maxFutureDays)

	var problems []string
	if s.Before(now) {
		problems = append(problems, "start date cannot be in the past")
	}
	if e.Before(s) {
		problems = append(problems, "end date must be on or after start date")
	} else if d := CalculateDuration(s, e); d > DefaultMaxDurationDays {
		problems = append(problems, fmt.Sprintf("booking cannot exceed %d days", DefaultMaxDurationDays))
	}
	if s.After(horizon) {
		problems = append(problems, fmt.Sprintf("start date cannot be more than %d days in the future", maxFutureDays))
	}
	if e.After(horizon) {
		problems = append(problems, fmt.Sprintf("end date cannot be more than %d days in the future", maxFutureDays))
	}
	return problems
}

// CheckDateRangeAvailability tests every date of [start, end] against the
// listing's blocks. Only "available" passes; a date without a block counts as
// available.
func CheckDateRangeAvailability(blocks []domain.AvailabilityBlock, start, end time.Time) domain.AvailabilityResult {
	byDate := make(map[string]domain.BlockStatus, len(blocks))
	for _, b := range blocks {
		byDate[FormatDate(b.Date)] = b.Status
	}

	conflicts := []time.Time{}
	for _, d := range DateSequence(start, end) {
		status, ok := byDate[FormatDate(d)]
		if ok && status != domain.BlockStatusAvailable {
			conflicts = append(conflicts, d)
		}
	}
	return domain.AvailabilityResult{Available: len(conflicts) == 0, Conflicts: conflicts}
}

// CreateBookingBlocks returns one block per date of the booking, tagged with
// the booking id. An empty status defaults to booked.
func CreateBookingBlocks(listingID, bookingID string, start, end time.Time, status domain.BlockStatus) []domain.AvailabilityBlock {
	if status == "" {
		status = domain.BlockStatusBooked
	}
	dates := DateSequence(start, end)
	blocks := make([]domain.AvailabilityBlock, 0, len(dates))
	for _, d := range dates {
		id := bookingID
		blocks = append(blocks, domain.AvailabilityBlock{
			ListingID: listingID,
			Date:      d,
			Status:    status,
			BookingID: &id,
		})
	}
	return blocks
}
