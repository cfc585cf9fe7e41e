// =============================================================================
// Slip Report - Date and Time Parsing
// =============================================================================
//
// Input dates are DD/MM/YYYY (one or two digit day and month) and times are
// 24-hour or AM/PM clock strings. A date and time combine into a Timestamp;
// anything unparsable yields an invalid Timestamp rather than an error.
//
// =============================================================================

package record

import (
	"strconv"
	"strings"
	"time"
)

// clockLayouts are the time-of-day formats seen in slip exports.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"03:04 PM",
	"03:04:05 PM",
	"3:04PM",
	"3:04:05PM",
}

// Timestamp is a combined date and time-of-day. Valid is false when either
// part failed to parse; invalid timestamps never win a first/last comparison.
type Timestamp struct {
	At    time.Time
	Valid bool
}

// Before reports whether t is strictly earlier than o. Invalid timestamps
// are neither earlier nor later than anything.
func (t Timestamp) Before(o Timestamp) bool {
	return t.Valid && o.Valid && t.At.Before(o.At)
}

// After reports whether t is strictly later than o.
func (t Timestamp) After(o Timestamp) bool {
	return t.Valid && o.Valid && t.At.After(o.At)
}

// Combine builds a Timestamp from a DD/MM/YYYY date and a time-of-day.
func Combine(date, clock string) Timestamp {
	day, ok := ParseDate(date)
	if !ok {
		return Timestamp{}
	}
	offset, ok := ParseClock(clock)
	if !ok {
		return Timestamp{}
	}
	return Timestamp{At: day.Add(offset), Valid: true}
}

// ParseDate parses a day/month/year date with slash separators and returns
// midnight UTC of that day. Day and month may have one or two digits.
// Dates that do not exist in the calendar (31/02/2024) are rejected.
func ParseDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || year < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ParseClock parses a time-of-day and returns its offset from midnight.
func ParseClock(s string) (time.Duration, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// FormatDate renders a time as DD/MM/YYYY, the input convention.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
