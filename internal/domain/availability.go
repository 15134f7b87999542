package domain

import "time"

type BlockStatus string

const (
	BlockStatusAvailable BlockStatus = "available"
	BlockStatusBooked    BlockStatus = "booked"
	BlockStatusBlocked   BlockStatus = "blocked"
	BlockStatusTentative BlockStatus = "tentative"
)

func (s BlockStatus) IsValid() bool {
	switch s {
	case BlockStatusAvailable, BlockStatusBooked, BlockStatusBlocked, BlockStatusTentative:
		return true
	}
	return false
}

// AvailabilityBlock marks one calendar date of a listing.
type AvailabilityBlock struct {
	ListingID string      `json:"listing_id"`
	Date      time.Time   `json:"date"`
	Status    BlockStatus `json:"status"`
	BookingID *string     `json:"booking_id,omitempty"`
}

// AvailabilityResult is the outcome of checking a date range.
type AvailabilityResult struct {
	Available bool        `json:"available"`
	Conflicts []time.Time `json:"conflicts"`
}
