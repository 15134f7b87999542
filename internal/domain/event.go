package domain

import "time"

type EventType string

const (
	EventBookingRequest   EventType = "booking_request"
	EventBookingConfirmed EventType = "booking_confirmed"
	EventBookingCancelled EventType = "booking_cancelled"
	EventBookingCompleted EventType = "booking_completed"
	EventPaymentReceived  EventType = "payment_received"
	EventPaymentFailed    EventType = "payment_failed"
)

// BookingEvent is emitted by the booking core for the notification dispatcher.
type BookingEvent struct {
	Type        EventType `json:"type"`
	BookingID   string    `json:"booking_id"`
	UserIDs     []string  `json:"user_ids"`
	ActorID     string    `json:"actor_id,omitempty"`
	ItemTitle   string    `json:"item_title"`
	AmountCents int64     `json:"amount_cents"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewBookingEvent fills the common fields from a booking.
func NewBookingEvent(t EventType, b *Booking, title string, recipients ...string) BookingEvent {
	return BookingEvent{
		Type:        t,
		BookingID:   b.ID,
		UserIDs:     recipients,
		ItemTitle:   title,
		AmountCents: b.TotalCents,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		OccurredAt:  time.Now().UTC(),
	}
}
