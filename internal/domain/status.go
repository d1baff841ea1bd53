package domain

import "strings"

// vendor status synonyms, lowercased. Adapters run every inbound status
// string through MapVendorStatus before handing the canonical booking on.
var statusSynonyms = map[string]BookingStatus{
	"confirmed":   StatusConfirmed,
	"booked":      StatusConfirmed,
	"reserved":    StatusConfirmed,
	"active":      StatusConfirmed,
	"new":         StatusConfirmed,
	"ok":          StatusConfirmed,
	"guaranteed":  StatusConfirmed,
	"cancelled":   StatusCancelled,
	"canceled":    StatusCancelled,
	"void":        StatusCancelled,
	"rejected":    StatusCancelled,
	"no_show":     StatusCancelled,
	"modified":    StatusModified,
	"amended":     StatusModified,
	"changed":     StatusModified,
	"updated":     StatusModified,
	"checked_in":  StatusCheckedIn,
	"checkedin":   StatusCheckedIn,
	"in_house":    StatusCheckedIn,
	"inhouse":     StatusCheckedIn,
	"arrived":     StatusCheckedIn,
	"checked_out": StatusCheckedOut,
	"checkedout":  StatusCheckedOut,
	"departed":    StatusCheckedOut,
	"completed":   StatusCheckedOut,
	"finished":    StatusCheckedOut,
}

// MapVendorStatus translates a vendor status string into the internal
// enumeration, case-insensitively. Unrecognized strings map to confirmed so
// that vendors may introduce new status vocabulary without breaking ingestion;
// the unknown is conservatively treated as an active booking.
func MapVendorStatus(s string) BookingStatus {
	if st, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st
	}
	return StatusConfirmed
}
