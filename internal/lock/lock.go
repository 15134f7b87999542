package lock

import (
	"context"
	"fmt"

	"rentshare-backend/internal/domain"
)

// Locker serializes work on a key across requests and, for the Redis
// implementation, across processes.
type Locker interface {
	// Acquire blocks until the key is held, the wait budget is spent or ctx
	// is done. The returned func releases the key and is safe to call once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ErrNotAcquired is returned when another holder kept the key for the whole
// wait budget. Callers surface it as a conflict and may retry.
var ErrNotAcquired = fmt.Errorf("%w: lock is held by another request", domain.ErrConflict)

func BookingKey(bookingID string) string {
	return "booking:" + bookingID
}

func ListingKey(listingID string) string {
	return "listing:" + listingID
}
