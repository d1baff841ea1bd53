package sources

import (
	"testing"
	"time"

	"roomsync/internal/domain"
)

func TestNormalizeBooking_AliasPrecedence(t *testing.T) {
	raw := map[string]any{
		"booking_id":   "B-100",
		"checkin_date": "2024-07-10",
		"arrival_date": "2024-07-11", // lower precedence, must lose
		"check_out":    "2024-07-12",
		"guest": map[string]any{
			"name":  "Ana Marin",
			"email": "Ana@B.com",
		},
		"room_type": "Deluxe",
		"status":    "booked",
		"total":     "240,50",
	}
	cb, err := normalizeBooking("booking_com", raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cb.ExternalID != "B-100" {
		t.Fatalf("external id = %q", cb.ExternalID)
	}
	if !cb.CheckIn.Equal(time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("checkin_date should win over arrival_date, got %s", cb.CheckIn)
	}
	if cb.GuestName != "Ana Marin" || cb.GuestEmail != "ana@b.com" {
		t.Fatalf("nested guest lookup failed: %q %q", cb.GuestName, cb.GuestEmail)
	}
	if cb.Status != domain.StatusConfirmed {
		t.Fatalf("status = %s", cb.Status)
	}
	if cb.TotalAmount != 240.50 {
		t.Fatalf("amount = %v", cb.TotalAmount)
	}
}

func TestNormalizeBooking_DefaultsForMissingOptionals(t *testing.T) {
	raw := map[string]any{
		"reservation_id": float64(42), // numeric ids get stringified
		"arrival_date":   "2024-07-10T14:00:00Z",
		"departure_date": "2024-07-12",
		"status":         "on-hold", // unknown vendor vocabulary
	}
	cb, err := normalizeBooking("pms_main", raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cb.ExternalID != "42" {
		t.Fatalf("external id = %q", cb.ExternalID)
	}
	if cb.GuestPhone != "" || cb.SpecialRequests != "" {
		t.Fatalf("optionals should default empty: %+v", cb)
	}
	if cb.Guests != 1 || cb.Currency != "USD" {
		t.Fatalf("numeric defaults not applied: %+v", cb)
	}
	if cb.Status != domain.StatusConfirmed {
		t.Fatalf("unknown status must default to confirmed, got %s", cb.Status)
	}
}

func TestNormalizeBooking_MissingIdentityFails(t *testing.T) {
	if _, err := normalizeBooking("pms_main", map[string]any{"arrival_date": "2024-07-10"}); err == nil {
		t.Fatalf("expected error for record without external id")
	}
	if _, err := normalizeBooking("pms_main", map[string]any{"id": "X"}); err == nil {
		t.Fatalf("expected error for record without stay dates")
	}
}

func TestExtractList_EnvelopeVariants(t *testing.T) {
	rec := map[string]any{"id": "X"}
	cases := []any{
		[]any{rec},
		map[string]any{"reservations": []any{rec}},
		map[string]any{"bookings": []any{rec}},
		map[string]any{"data": []any{rec}},
	}
	for i, payload := range cases {
		got := extractList(payload)
		if len(got) != 1 || got[0]["id"] != "X" {
			t.Fatalf("case %d: got %+v", i, got)
		}
	}
	if got := extractList(map[string]any{"unrelated": 1}); got != nil {
		t.Fatalf("expected nil for unknown envelope, got %+v", got)
	}
}

func TestFirstTime_Layouts(t *testing.T) {
	for _, s := range []string{
		"2024-07-10",
		"2024-07-10T00:00:00Z",
		"2024-07-10 00:00:00",
		"10/07/2024",
	} {
		got := firstTime(map[string]any{"check_in": s}, "check_in")
		if got.IsZero() {
			t.Fatalf("failed to parse %q", s)
		}
		if got.Year() != 2024 || got.Month() != 7 || got.Day() != 10 {
			t.Fatalf("parsed %q as %s", s, got)
		}
	}
}
