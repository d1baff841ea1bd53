package app

import (
	"context"
	"time"

	"roomsync/internal/domain"
)

// AvailabilityChecker answers "is this room free for [checkIn, checkOut)?"
// A room is taken when any confirmed or checked_in reservation on it
// intersects the interval; cancelled and checked_out rows never block.
type AvailabilityChecker struct {
	res domain.ReservationStore
}

func NewAvailabilityChecker(res domain.ReservationStore) *AvailabilityChecker {
	return &AvailabilityChecker{res: res}
}

func (c *AvailabilityChecker) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	n, err := c.res.CountOverlapping(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
