package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roomsync/internal/domain"
)

const checkoutChecklist = "Strip linens; restock amenities; full bathroom clean; minibar audit; report damage"

const preArrivalLead = 4 * time.Hour

// roomStatusFor maps a reservation status to the room status it implies.
// modified carries no room transition of its own.
func roomStatusFor(s domain.BookingStatus) (domain.RoomStatus, bool) {
	switch s {
	case domain.StatusConfirmed:
		return domain.RoomReserved, true
	case domain.StatusCheckedIn:
		return domain.RoomOccupied, true
	case domain.StatusCheckedOut:
		return domain.RoomCleaning, true
	case domain.StatusCancelled:
		return domain.RoomAvailable, true
	}
	return "", false
}

// Dispatcher applies the operational side effects of a reservation status
// change: room status flips and housekeeping task creation. It runs after a
// successful reservation write and its failures never roll that write back.
type Dispatcher struct {
	rooms domain.RoomStore
	tasks domain.TaskStore
}

func NewDispatcher(rooms domain.RoomStore, tasks domain.TaskStore) *Dispatcher {
	return &Dispatcher{rooms: rooms, tasks: tasks}
}

// OnStatusChange handles a persisted transition from -> to on an existing
// reservation. Callers only invoke it when the status actually changed, so
// each triggering event fires its side effects at most once.
func (d *Dispatcher) OnStatusChange(ctx context.Context, res domain.Reservation, from, to domain.BookingStatus) error {
	if from == to || res.RoomID == nil {
		return nil
	}
	roomID := *res.RoomID

	if target, ok := roomStatusFor(to); ok {
		room, err := d.rooms.GetRoom(ctx, roomID)
		if err != nil {
			return fmt.Errorf("load room %d: %w", roomID, err)
		}
		// idempotent: equal mapped status is a no-op, not an error
		if room.Status != target {
			if err := d.rooms.UpdateStatus(ctx, roomID, target); err != nil {
				return fmt.Errorf("room %d -> %s: %w", roomID, target, err)
			}
		}
	}

	if to == domain.StatusCheckedOut {
		_, err := d.tasks.CreateTask(ctx, domain.HousekeepingTask{
			RoomID:       roomID,
			Type:         domain.TaskCheckoutCleaning,
			ScheduledAt:  time.Now().UTC(),
			Instructions: checkoutChecklist,
			Source:       sourceTag(res),
		})
		if err != nil {
			return fmt.Errorf("checkout task for room %d: %w", roomID, err)
		}
		log.Info().Int64("room", roomID).Int64("reservation", res.ID).Msg("checkout cleaning scheduled")
	}
	return nil
}

// OnNewBooking handles a freshly created reservation. A confirmed booking
// with an assigned room reserves the room for its interval and schedules a
// pre-arrival inspection 4 hours before check-in.
func (d *Dispatcher) OnNewBooking(ctx context.Context, res domain.Reservation) error {
	if res.RoomID == nil {
		return nil
	}
	roomID := *res.RoomID

	if target, ok := roomStatusFor(res.Status); ok {
		room, err := d.rooms.GetRoom(ctx, roomID)
		if err != nil {
			return fmt.Errorf("load room %d: %w", roomID, err)
		}
		if room.Status != target {
			if err := d.rooms.UpdateStatus(ctx, roomID, target); err != nil {
				return fmt.Errorf("room %d -> %s: %w", roomID, target, err)
			}
		}
	}

	if res.Status == domain.StatusConfirmed {
		if err := d.rooms.SetCurrentStay(ctx, roomID, res.CheckIn, res.CheckOut); err != nil {
			return fmt.Errorf("stay cache for room %d: %w", roomID, err)
		}
		_, err := d.tasks.CreateTask(ctx, domain.HousekeepingTask{
			RoomID:       roomID,
			Type:         domain.TaskPreArrivalInspection,
			ScheduledAt:  res.CheckIn.Add(-preArrivalLead),
			Instructions: "Verify readiness before guest arrival",
			Source:       sourceTag(res),
		})
		if err != nil {
			return fmt.Errorf("pre-arrival task for room %d: %w", roomID, err)
		}
	}
	return nil
}

func sourceTag(res domain.Reservation) string {
	if res.Source != nil {
		return *res.Source
	}
	return "direct"
}
