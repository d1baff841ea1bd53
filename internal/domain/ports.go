package domain

import (
	"context"
	"time"
)

type ReservationStore interface {
	// Write paths
	Create(ctx context.Context, r *Reservation) (int64, error) // ErrDuplicateKey on (source, external_id) collision
	Update(ctx context.Context, r *Reservation) error

	// Read paths
	FindByExternalID(ctx context.Context, source, externalID string) (Reservation, error)
	FindByGuestStay(ctx context.Context, email string, checkIn, checkOut time.Time) (Reservation, error)
	// CountOverlapping counts confirmed/checked_in reservations on the room
	// whose [check_in, check_out) intersects the given half-open interval.
	CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error)
}

type RoomStore interface {
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListByType(ctx context.Context, roomType string) ([]Room, error) // case-insensitive, ordered by room number
	ListByStatus(ctx context.Context, status RoomStatus) ([]Room, error)
	UpdateStatus(ctx context.Context, id int64, status RoomStatus) error
	SetCurrentStay(ctx context.Context, id int64, checkIn, checkOut time.Time) error
}

type TaskStore interface {
	CreateTask(ctx context.Context, t HousekeepingTask) (int64, error)
}

type SourceStore interface {
	UpsertSource(ctx context.Context, cfg SourceConfig) error
	GetSource(ctx context.Context, name string) (SourceConfig, error)
	ListSources(ctx context.Context) ([]SourceConfig, error)
}

type SyncLogStore interface {
	AppendSyncLog(ctx context.Context, e SyncLogEntry) error
	RecentFailures(ctx context.Context, limit int) ([]SyncLogEntry, error)
}

// SourceAdapter fetches and normalizes reservations for one SourceKind.
type SourceAdapter interface {
	Fetch(ctx context.Context, cfg SourceConfig) ([]CanonicalBooking, error)
	// Probe performs a lightweight reachability check against the configured
	// endpoint and reports latency. It never touches reservation data.
	Probe(ctx context.Context, cfg SourceConfig) (time.Duration, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
