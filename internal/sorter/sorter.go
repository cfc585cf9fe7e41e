// =============================================================================
// Slip Report - Sort Engine
// =============================================================================
//
// This module reorders report entries by a chosen column. Each column has a
// fixed comparison kind, selected once per sort request:
//
//   | Kind         | Comparison                                          |
//   |--------------|-----------------------------------------------------|
//   | Numeric      | float64 values                                      |
//   | CalendarDate | DD/MM/YYYY re-parsed to a calendar day              |
//   | TimeOfDay    | time string placed on a shared reference date       |
//   | Lexical      | locale-aware collation of the displayed text        |
//
// Sorting the same column again flips the direction; a new column starts
// ascending. Descending is the exact reverse of the stable ascending order,
// so two sorts on one column give mirror images. Sorting never mutates the
// input slice or the aggregates behind it.
//
// =============================================================================

package sorter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/text/collate"

	"github.com/ginjaninja78/slip-report/internal/record"
	"github.com/ginjaninja78/slip-report/internal/report"
)

// ErrUnknownColumn is returned for a column the report does not have.
var ErrUnknownColumn = errors.New("unknown sort column")

// referenceDate anchors time-of-day comparisons.
var referenceDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// =============================================================================
// COLUMN KINDS
// =============================================================================

// Kind selects the comparator used for a column.
type Kind int

const (
	Lexical Kind = iota
	Numeric
	CalendarDate
	TimeOfDay
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Numeric:
		return "numeric"
	case CalendarDate:
		return "date"
	case TimeOfDay:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Direction is the order of a sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc"/"desc" (and the long forms); anything else
// is ascending.
func ParseDirection(s string) Direction {
	switch s {
	case "desc", "descending", "DESC":
		return Descending
	default:
		return Ascending
	}
}

// Column describes one sortable column of entries of type T.
type Column[T any] struct {
	ID   string
	Kind Kind

	// Text returns the displayed value; used by every kind but Numeric.
	Text func(T) string

	// Number returns the numeric value; used by Numeric.
	Number func(T) float64

	// NaturalDigits makes Lexical comparison order digit runs by value.
	NaturalDigits bool
}

// comparator builds the comparison function for a column.
func (c Column[T]) comparator() func(a, b T) int {
	switch c.Kind {
	case Numeric:
		return func(a, b T) int {
			return cmp.Compare(c.Number(a), c.Number(b))
		}
	case CalendarDate:
		return func(a, b T) int {
			return compareParsed(c.Text(a), c.Text(b), record.ParseDate)
		}
	case TimeOfDay:
		return func(a, b T) int {
			return compareParsed(c.Text(a), c.Text(b), clockOnReference)
		}
	default:
		var opts []collate.Option
		if c.NaturalDigits {
			opts = append(opts, collate.Numeric)
		}
		compare := report.NewTextComparer(opts...)
		return func(a, b T) int {
			return compare(c.Text(a), c.Text(b))
		}
	}
}

func clockOnReference(s string) (time.Time, bool) {
	offset, ok := record.ParseClock(s)
	if !ok {
		return time.Time{}, false
	}
	return referenceDate.Add(offset), true
}

// compareParsed orders unparsable values before all parsable ones.
func compareParsed(a, b string, parse func(string) (time.Time, bool)) int {
	ta, okA := parse(a)
	tb, okB := parse(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	default:
		return ta.Compare(tb)
	}
}

// SortBy returns a sorted copy of entries.
func SortBy[T any](entries []T, col Column[T], dir Direction) []T {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, col.comparator())
	if dir == Descending {
		slices.Reverse(sorted)
	}
	return sorted
}

// =============================================================================
// SORTER STATE
// =============================================================================

// ReportKind identifies which report a sort request targets.
type ReportKind string

const (
	SupervisorReport ReportKind = "supervisors"
	WardReport       ReportKind = "wards"
)

// State is the current sort column and direction of one report.
type State struct {
	Column    string
	Direction Direction
}

// Next returns the state after a request on column: same column toggles,
// a new column resets to ascending.
func (s State) Next(column string) State {
	if s.Column == column {
		if s.Direction == Ascending {
			return State{Column: column, Direction: Descending}
		}
		return State{Column: column, Direction: Ascending}
	}
	return State{Column: column, Direction: Ascending}
}

// Sorter remembers the sort state of each report independently.
type Sorter struct {
	mu    sync.Mutex
	state map[ReportKind]State
}

// New returns a Sorter with no column selected.
func New() *Sorter {
	return &Sorter{state: make(map[ReportKind]State)}
}

// State returns the current state for a report.
func (s *Sorter) State(kind ReportKind) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[kind]
}

// Reset forgets the state of every report, as after loading a new input.
func (s *Sorter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.state)
}

func (s *Sorter) advance(kind ReportKind, column string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state[kind].Next(column)
	s.state[kind] = next
	return next
}

// Supervisors applies a sort request to supervisor entries.
//
// RETURNS:
//   - The reordered copy and the new state.
//   - ErrUnknownColumn if the column is not a supervisor column; state is unchanged.
func (s *Sorter) Supervisors(entries []report.SupervisorEntry, column string) ([]report.SupervisorEntry, State, error) {
	col, ok := SupervisorColumn(column)
	if !ok {
		return nil, s.State(SupervisorReport), fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	state := s.advance(SupervisorReport, column)
	return SortBy(entries, col, state.Direction), state, nil
}

// Wards applies a sort request to ward entries.
func (s *Sorter) Wards(entries []report.WardEntry, column string) ([]report.WardEntry, State, error) {
	col, ok := WardColumn(column)
	if !ok {
		return nil, s.State(WardReport), fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	state := s.advance(WardReport, column)
	return SortBy(entries, col, state.Direction), state, nil
}
