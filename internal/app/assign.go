package app

import (
	"context"
	"strings"
	"time"

	"roomsync/internal/domain"
)

// RoomAssigner picks a physical room for a requested type and stay window.
type RoomAssigner struct {
	rooms domain.RoomStore
	avail *AvailabilityChecker
}

func NewRoomAssigner(rooms domain.RoomStore, avail *AvailabilityChecker) *RoomAssigner {
	return &RoomAssigner{rooms: rooms, avail: avail}
}

// Assign returns the first free room of the requested type, falling back to
// any available room when the type is exhausted. A nil room with nil error
// means "accepted without assignment"; callers must not treat it as fatal.
func (a *RoomAssigner) Assign(ctx context.Context, roomType string, checkIn, checkOut time.Time) (*domain.Room, error) {
	candidates, err := a.rooms.ListByType(ctx, roomType)
	if err != nil {
		return nil, err
	}
	for _, rm := range candidates {
		if rm.Status != domain.RoomAvailable && rm.Status != domain.RoomCleaning {
			continue
		}
		if !strings.EqualFold(rm.Type, roomType) {
			continue
		}
		free, err := a.avail.IsAvailable(ctx, rm.ID, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if free {
			r := rm
			return &r, nil
		}
	}

	// No typed match: fall back to any available room, re-verified against
	// the same window.
	fallback, err := a.rooms.ListByStatus(ctx, domain.RoomAvailable)
	if err != nil {
		return nil, err
	}
	for _, rm := range fallback {
		free, err := a.avail.IsAvailable(ctx, rm.ID, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if free {
			r := rm
			return &r, nil
		}
	}
	return nil, nil
}
