package domain

import "time"

// Reservation is the persisted internal record. ExternalID/Source are nil for
// directly-created bookings; RoomID is nil until a room is assigned.
// Cancellation is a status value, never a row removal.
type Reservation struct {
	ID              int64
	ExternalID      *string
	Source          *string
	RoomID          *int64
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	RoomType        string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	TotalAmount     float64
	Currency        string
	Status          BookingStatus
	BookedAt        time.Time
	SpecialRequests string
	MetadataJSON    []byte
	IsExternal      bool
	LastSyncAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type RoomStatus string

const (
	RoomAvailable  RoomStatus = "available"
	RoomReserved   RoomStatus = "reserved"
	RoomOccupied   RoomStatus = "occupied"
	RoomCleaning   RoomStatus = "cleaning"
	RoomOutOfOrder RoomStatus = "out_of_order"
)

type Room struct {
	ID     int64
	Number string
	Type   string
	Status RoomStatus
	// current occupancy interval cache, nil when the room holds no booking
	CurrentCheckIn  *time.Time
	CurrentCheckOut *time.Time
}

type TaskType string

const (
	TaskCheckoutCleaning     TaskType = "checkout_cleaning"
	TaskPreArrivalInspection TaskType = "pre_arrival_inspection"
)

type HousekeepingTask struct {
	ID           int64
	RoomID       int64
	Type         TaskType
	ScheduledAt  time.Time
	Instructions string
	Source       string
	CreatedAt    time.Time
}

// SyncLogEntry is an append-only audit row, one per completed or failed cycle.
type SyncLogEntry struct {
	ID         int64
	Source     string
	Operation  string
	RunID      string
	DetailJSON []byte
	Success    bool
	CreatedAt  time.Time
}

// Overlaps reports whether [a1,a2) and [b1,b2) intersect. Half-open semantics:
// same-day back-to-back turnovers do not overlap.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}
