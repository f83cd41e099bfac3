// Package format renders and parses the id-ID representations used across the
// application: rupiah amounts ("Rp 20.000") and Indonesian long dates
// ("4 Januari 2026, 09:15:00"). The tabular engine uses the same functions for
// type-aware search, filter, and comparison so that what users see is what
// they match against.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// acceptedLayouts are the date shapes the backend and spreadsheet exports
// exchange. Tried in order by ParseDate.
var acceptedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// IDR renders v as a localized rupiah string. Non-numeric characters are
// stripped first, so already-formatted values round-trip unchanged. Empty or
// unparsable values render as the empty string.
func IDR(v any) string {
	n, ok := Amount(v)
	if !ok {
		return ""
	}
	// The Indonesian locale groups with dots, giving "Rp 5.000".
	return idPrinter.Sprintf("Rp %d", n)
}

// Amount extracts the numeric rupiah value out of v. Digits are kept and
// everything else (currency prefix, grouping dots, spaces) is dropped, so
// "Rp 5.000" parses as 5000. A leading minus is honoured.
func Amount(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	}

	s := fmt.Sprint(v)
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '-' && i == 0 {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Number parses v as a plain decimal number for sorting and comparison.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(v)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDate interprets v as a point in time, accepting time.Time directly or
// any of the acceptedLayouts for strings.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateTime renders v as an Indonesian long date with time, e.g.
// "4 Januari 2026, 09:15:00". Unparsable values fall back to their default
// string form so the table never shows blanks for data the backend returned.
func DateTime(v any) string {
	if v == nil {
		return "-"
	}
	t, ok := ParseDate(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%d %s %d, %02d:%02d:%02d",
		t.Day(), monthNames[t.Month()-1], t.Year(),
		t.Hour(), t.Minute(), t.Second())
}

// Date renders only the date part, e.g. "4 Januari 2026".
func Date(v any) string {
	t, ok := ParseDate(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}
