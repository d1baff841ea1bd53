package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roomsync/internal/domain"
)

type ReconcileResult struct {
	IsNew         bool
	ReservationID int64
}

// Reconciler decides create-vs-update for each canonical booking and persists
// the outcome, then hands the state transition to the dispatcher.
// Match priority: (source, externalID) exact, then (guestEmail, checkIn,
// checkOut) to catch re-imports under a changed external id.
type Reconciler struct {
	res      domain.ReservationStore
	assigner *RoomAssigner
	dispatch *Dispatcher
}

func NewReconciler(res domain.ReservationStore, assigner *RoomAssigner, dispatch *Dispatcher) *Reconciler {
	return &Reconciler{res: res, assigner: assigner, dispatch: dispatch}
}

func (r *Reconciler) Reconcile(ctx context.Context, cb domain.CanonicalBooking) (ReconcileResult, error) {
	existing, err := r.res.FindByExternalID(ctx, cb.Source, cb.ExternalID)
	switch {
	case err == nil:
		return r.update(ctx, existing, cb)
	case !errors.Is(err, domain.ErrNotFound):
		return ReconcileResult{}, fmt.Errorf("match by external id: %w", err)
	}

	if cb.GuestEmail != "" {
		existing, err = r.res.FindByGuestStay(ctx, cb.GuestEmail, cb.CheckIn, cb.CheckOut)
		switch {
		case err == nil:
			return r.update(ctx, existing, cb)
		case !errors.Is(err, domain.ErrNotFound):
			return ReconcileResult{}, fmt.Errorf("match by guest stay: %w", err)
		}
	}

	return r.create(ctx, cb)
}

// update merges the canonical fields into the stored row and re-dispatches
// side effects only when the status value actually changed.
func (r *Reconciler) update(ctx context.Context, res domain.Reservation, cb domain.CanonicalBooking) (ReconcileResult, error) {
	prev := res.Status
	merge(&res, cb)

	now := time.Now().UTC()
	res.LastSyncAt = &now
	res.UpdatedAt = now

	if err := r.res.Update(ctx, &res); err != nil {
		return ReconcileResult{}, fmt.Errorf("update reservation %d: %w", res.ID, err)
	}
	if prev != res.Status {
		if err := r.dispatch.OnStatusChange(ctx, res, prev, res.Status); err != nil {
			return ReconcileResult{IsNew: false, ReservationID: res.ID}, err
		}
	}
	return ReconcileResult{IsNew: false, ReservationID: res.ID}, nil
}

func (r *Reconciler) create(ctx context.Context, cb domain.CanonicalBooking) (ReconcileResult, error) {
	room, err := r.assigner.Assign(ctx, cb.RoomType, cb.CheckIn, cb.CheckOut)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("assign room: %w", err)
	}
	if room == nil {
		// accepted without a room; left for manual resolution
		log.Warn().Str("source", cb.Source).Str("external_id", cb.ExternalID).
			Str("room_type", cb.RoomType).Msg("no room free, persisting unassigned")
	}

	now := time.Now().UTC()
	res := domain.Reservation{
		ExternalID:      ptrStr(cb.ExternalID),
		Source:          ptrStr(cb.Source),
		GuestName:       cb.GuestName,
		GuestEmail:      cb.GuestEmail,
		GuestPhone:      cb.GuestPhone,
		RoomType:        cb.RoomType,
		CheckIn:         cb.CheckIn,
		CheckOut:        cb.CheckOut,
		Guests:          cb.Guests,
		TotalAmount:     cb.TotalAmount,
		Currency:        cb.Currency,
		Status:          cb.Status,
		BookedAt:        cb.BookedAt,
		SpecialRequests: cb.SpecialRequests,
		IsExternal:      true,
		LastSyncAt:      &now,
	}
	if room != nil {
		id := room.ID
		res.RoomID = &id
	}
	if len(cb.Metadata) > 0 {
		if b, merr := json.Marshal(cb.Metadata); merr == nil {
			res.MetadataJSON = b
		} else {
			log.Error().Err(merr).Str("external_id", cb.ExternalID).Msg("marshal metadata failed")
		}
	}

	id, err := r.res.Create(ctx, &res)
	if errors.Is(err, domain.ErrDuplicateKey) {
		// a concurrent cycle inserted the same (source, external_id) between
		// our match read and this write; fall back to the update path
		existing, ferr := r.res.FindByExternalID(ctx, cb.Source, cb.ExternalID)
		if ferr != nil {
			return ReconcileResult{}, fmt.Errorf("re-fetch after duplicate: %w", ferr)
		}
		return r.update(ctx, existing, cb)
	}
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("create reservation: %w", err)
	}
	res.ID = id

	if err := r.dispatch.OnNewBooking(ctx, res); err != nil {
		return ReconcileResult{IsNew: true, ReservationID: id}, err
	}
	return ReconcileResult{IsNew: true, ReservationID: id}, nil
}

// merge copies every canonical field onto the stored reservation. Identity,
// room assignment, and isExternal are left untouched.
func merge(res *domain.Reservation, cb domain.CanonicalBooking) {
	if res.ExternalID == nil {
		res.ExternalID = ptrStr(cb.ExternalID)
	}
	if res.Source == nil {
		res.Source = ptrStr(cb.Source)
	}
	res.GuestName = cb.GuestName
	res.GuestEmail = cb.GuestEmail
	res.GuestPhone = cb.GuestPhone
	res.RoomType = cb.RoomType
	res.CheckIn = cb.CheckIn
	res.CheckOut = cb.CheckOut
	res.Guests = cb.Guests
	res.TotalAmount = cb.TotalAmount
	res.Currency = cb.Currency
	res.Status = cb.Status
	res.BookedAt = cb.BookedAt
	res.SpecialRequests = cb.SpecialRequests
	if len(cb.Metadata) > 0 {
		if b, err := json.Marshal(cb.Metadata); err == nil {
			res.MetadataJSON = b
		}
	}
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
