package sources

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"roomsync/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Vendors name the same field many ways; each canonical field lists its
// known spellings in fixed precedence order.
var bookingAliases = map[string][]string{
	"external_id": {"id", "booking_id", "reservation_id", "confirmation_number", "confirmationNo", "booking.id"},
	"guest_name":  {"guest_name", "guestName", "customer_name", "guest.name", "guest.full_name", "customer.name", "name"},
	"guest_email": {"guest_email", "email", "guest.email", "customer.email", "contact.email"},
	"guest_phone": {"guest_phone", "phone", "phone_number", "guest.phone", "customer.phone", "contact.phone"},
	"room_type":   {"room_type", "roomType", "room_category", "unit_type", "room.type", "accommodation_type"},
	"room_number": {"room_number", "roomNumber", "room_no", "unit", "room.number"},
	"check_in":    {"checkin_date", "check_in", "arrival_date", "arrival", "checkIn", "from_date", "start_date"},
	"check_out":   {"checkout_date", "check_out", "departure_date", "departure", "checkOut", "to_date", "end_date"},
	"guests":      {"guests", "guest_count", "num_guests", "number_of_guests", "adults", "pax"},
	"amount":      {"total_amount", "total", "amount", "gross_amount", "total_price", "price"},
	"currency":    {"currency", "currency_code", "currencyCode"},
	"status":      {"status", "state", "booking_status", "reservation_status"},
	"booked_at":   {"created_at", "createdAt", "booking_date", "booked_at", "creation_date"},
	"requests":    {"special_requests", "requests", "notes", "comments", "remarks"},
}

// envelope keys under which vendors nest the reservation list
var listEnvelopeKeys = []string{"reservations", "bookings", "data", "items", "results"}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path, stringifying JSON numbers.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstStr: first non-empty string for a named alias set.
func firstStr(m map[string]any, key string) string {
	for _, p := range bookingAliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// firstFloat: number from the alias set (float64/int/string like "120,50").
func firstFloat(m map[string]any, key string) float64 {
	for _, p := range bookingAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func firstInt(m map[string]any, key string) int {
	for _, p := range bookingAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

func firstTime(m map[string]any, key string) time.Time {
	for _, p := range bookingAliases[key] {
		s := strings.TrimSpace(lookupStr(m, p))
		if s == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// extractList accepts either a top-level JSON array or an envelope object
// with the list under one of the known keys.
func extractList(payload any) []map[string]any {
	toMaps := func(raw []any) []map[string]any {
		out := make([]map[string]any, 0, len(raw))
		for _, it := range raw {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	switch v := payload.(type) {
	case []any:
		return toMaps(v)
	case map[string]any:
		for _, k := range listEnvelopeKeys {
			if raw, ok := v[k].([]any); ok {
				return toMaps(raw)
			}
		}
	}
	return nil
}

/********** booking normalizer **********/

// normalizeBooking maps one raw vendor record onto the canonical shape.
// Optional fields default to empty values; an absent external id or stay
// window makes the record unusable and is reported as an error.
func normalizeBooking(source string, m map[string]any) (domain.CanonicalBooking, error) {
	cb := domain.CanonicalBooking{
		Source:          source,
		ExternalID:      firstStr(m, "external_id"),
		GuestName:       firstStr(m, "guest_name"),
		GuestEmail:      strings.ToLower(firstStr(m, "guest_email")),
		GuestPhone:      firstStr(m, "guest_phone"),
		RoomType:        firstStr(m, "room_type"),
		RoomNumber:      firstStr(m, "room_number"),
		CheckIn:         firstTime(m, "check_in"),
		CheckOut:        firstTime(m, "check_out"),
		Guests:          firstInt(m, "guests"),
		TotalAmount:     firstFloat(m, "amount"),
		Currency:        strings.ToUpper(firstStr(m, "currency")),
		Status:          domain.MapVendorStatus(firstStr(m, "status")),
		BookedAt:        firstTime(m, "booked_at"),
		SpecialRequests: firstStr(m, "requests"),
		Metadata:        m,
	}
	if cb.ExternalID == "" {
		return cb, fmt.Errorf("record without external id")
	}
	if cb.CheckIn.IsZero() || cb.CheckOut.IsZero() {
		return cb, fmt.Errorf("record %s missing stay dates", cb.ExternalID)
	}
	if cb.Guests <= 0 {
		cb.Guests = 1
	}
	if cb.Currency == "" {
		cb.Currency = "USD"
	}
	return cb, nil
}
