package domain

import "time"

type SourceKind string

const (
	KindPMS            SourceKind = "pms"
	KindOTA            SourceKind = "ota"
	KindChannelManager SourceKind = "channel_manager"
	KindDirect         SourceKind = "direct"
)

func (k SourceKind) Valid() bool {
	switch k {
	case KindPMS, KindOTA, KindChannelManager, KindDirect:
		return true
	}
	return false
}

// SourceConfig describes one external booking channel. Written by admins,
// read-only to the sync core during a cycle.
type SourceConfig struct {
	Name            string
	Kind            SourceKind
	Endpoint        string
	APIKey          string
	APISecret       string
	ProtocolVersion string
	Active          bool
	SyncInterval    time.Duration
	SyncFacets      []string // e.g. "reservations", "availability"
}

type BookingStatus string

const (
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusModified   BookingStatus = "modified"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
)

// CanonicalBooking is the source-agnostic shape every adapter produces.
// It is never persisted directly; reconciliation consumes it.
type CanonicalBooking struct {
	ExternalID      string
	Source          string
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	RoomType        string
	RoomNumber      string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	TotalAmount     float64
	Currency        string
	Status          BookingStatus
	BookedAt        time.Time
	SpecialRequests string
	Metadata        map[string]any
}
