// =============================================================================
// Slip Report - Record Filter
// =============================================================================
//
// This module narrows the records that reach aggregation. A Criteria with no
// fields set passes everything.
//
// MATCHING:
//   - Supervisor: the name or the id contains the query, ignoring case
//   - From / To: inclusive calendar-day bounds on the record date; records
//     with an unparsable date fail whenever either bound is set
//
// =============================================================================

package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ginjaninja78/slip-report/internal/record"
)

// boundLayout is the layout accepted for From/To on the command line and
// in query parameters.
const boundLayout = "2006-01-02"

// Criteria selects records by supervisor and date.
type Criteria struct {
	Supervisor string
	From       time.Time
	To         time.Time
}

// IsZero reports whether the criteria pass every record.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Supervisor) == "" && c.From.IsZero() && c.To.IsZero()
}

// Matches reports whether rec satisfies every set criterion.
func (c Criteria) Matches(rec record.NormalizedRecord) bool {
	if q := strings.TrimSpace(c.Supervisor); q != "" {
		q = strings.ToLower(q)
		hit := lo.SomeBy([]string{rec.SupervisorName, rec.SupervisorID}, func(v string) bool {
			return strings.Contains(strings.ToLower(v), q)
		})
		if !hit {
			return false
		}
	}

	if c.From.IsZero() && c.To.IsZero() {
		return true
	}

	day, ok := record.ParseDate(rec.Date)
	if !ok {
		return false
	}
	if !c.From.IsZero() && day.Before(truncate(c.From)) {
		return false
	}
	if !c.To.IsZero() && day.After(truncate(c.To)) {
		return false
	}
	return true
}

// Keep returns a predicate for aggregate.Options, or nil when the criteria
// pass everything.
func (c Criteria) Keep() func(record.NormalizedRecord) bool {
	if c.IsZero() {
		return nil
	}
	return c.Matches
}

// ParseBound parses a YYYY-MM-DD bound. An empty string is the zero time.
func ParseBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(boundLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// New builds Criteria from raw strings and validates the range.
func New(supervisor, from, to string) (Criteria, error) {
	c := Criteria{Supervisor: supervisor}

	var err error
	if c.From, err = ParseBound(from); err != nil {
		return Criteria{}, fmt.Errorf("from: %w", err)
	}
	if c.To, err = ParseBound(to); err != nil {
		return Criteria{}, fmt.Errorf("to: %w", err)
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return Criteria{}, fmt.Errorf("date range ends before it starts: %s > %s", from, to)
	}
	return c, nil
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
