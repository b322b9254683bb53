package edi

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses an ISO date string (YYYY-MM-DD only).
// Empty or malformed values return false; no other layouts are accepted so
// that date comparisons stay deterministic across locales.
func ParseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateDelayed reports whether the record's actual date lands after its
// expected date. Records missing either date are never date-delayed.
func DateDelayed(r Record) bool {
	expected, okE := ParseDate(r.ExpectedDate)
	actual, okA := ParseDate(r.ActualDate)
	return okE && okA && actual.After(expected)
}

// Overdue reports whether an invoice is overdue as of now: invoice type,
// no actual date, expected date strictly before today, and not yet paid.
// Non-invoice records are never overdue.
func Overdue(r Record, now time.Time) bool {
	if r.TransactionType != TypeInvoice {
		return false
	}
	if _, ok := ParseDate(r.ActualDate); ok {
		return false
	}
	expected, ok := ParseDate(r.ExpectedDate)
	if !ok {
		return false
	}
	if strings.EqualFold(r.Status, "paid") {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return expected.Before(today)
}
