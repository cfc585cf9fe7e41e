package sorter

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/slip-report/internal/report"
)

func supervisors() []report.SupervisorEntry {
	return []report.SupervisorEntry{
		{Name: "Ravi", ID: "S3", FirstDate: "01/02/2024", FirstTime: "17:30", Count: 4, TotalAmount: decimal.NewFromInt(40)},
		{Name: "Asha", ID: "S1", FirstDate: "05/01/2024", FirstTime: "9:00", Count: 7, TotalAmount: decimal.NewFromInt(10)},
		{Name: "mina", ID: "S4", FirstDate: "not a date", FirstTime: "", Count: 1, TotalAmount: decimal.NewFromInt(25)},
	}
}

func names(entries []report.SupervisorEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestSortTogglesDirection(t *testing.T) {
	s := New()
	in := supervisors()

	asc, state, err := s.Supervisors(in, "count")
	require.NoError(t, err)
	assert.Equal(t, State{Column: "count", Direction: Ascending}, state)
	assert.Equal(t, []string{"mina", "Ravi", "Asha"}, names(asc))

	desc, state, err := s.Supervisors(in, "count")
	require.NoError(t, err)
	assert.Equal(t, Descending, state.Direction)
	assert.Equal(t, []string{"Asha", "Ravi", "mina"}, names(desc))

	_, state, err = s.Supervisors(in, "name")
	require.NoError(t, err)
	assert.Equal(t, State{Column: "name", Direction: Ascending}, state)
}

func TestSortTwiceMirrors(t *testing.T) {
	in := []report.SupervisorEntry{
		{Name: "A", Count: 2}, {Name: "B", Count: 1}, {Name: "C", Count: 2}, {Name: "D", Count: 1},
	}
	col, ok := SupervisorColumn("count")
	require.True(t, ok)

	asc := SortBy(in, col, Ascending)
	desc := SortBy(in, col, Descending)
	assert.Equal(t, []string{"B", "D", "A", "C"}, names(asc))
	assert.Equal(t, []string{"C", "A", "D", "B"}, names(desc))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := supervisors()
	before := names(in)
	_, _, err := New().Supervisors(in, "name")
	require.NoError(t, err)
	assert.Equal(t, before, names(in))
}

func TestUnknownColumnKeepsState(t *testing.T) {
	s := New()
	_, _, err := s.Supervisors(supervisors(), "count")
	require.NoError(t, err)

	_, state, err := s.Supervisors(supervisors(), "bogus")
	assert.True(t, errors.Is(err, ErrUnknownColumn))
	assert.Equal(t, State{Column: "count", Direction: Ascending}, state)

	_, _, err = s.Wards(nil, "working_hours")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestColumnKinds(t *testing.T) {
	tests := []struct {
		column string
		want   []string
	}{
		// unparsable dates and times sort first
		{"first_date", []string{"mina", "Asha", "Ravi"}},
		{"first_time", []string{"mina", "Asha", "Ravi"}},
		{"name", []string{"Asha", "mina", "Ravi"}},
		{"total_amount", []string{"Asha", "mina", "Ravi"}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col, ok := SupervisorColumn(tt.column)
			require.True(t, ok)
			assert.Equal(t, tt.want, names(SortBy(supervisors(), col, Ascending)))
		})
	}
}

func TestReportsKeepIndependentState(t *testing.T) {
	s := New()
	wards := []report.WardEntry{{Ward: "10"}, {Ward: "9"}, {Ward: "2"}}

	_, _, err := s.Supervisors(supervisors(), "count")
	require.NoError(t, err)
	sorted, state, err := s.Wards(wards, "ward")
	require.NoError(t, err)

	assert.Equal(t, Ascending, state.Direction)
	assert.Equal(t, "2", sorted[0].Ward)
	assert.Equal(t, "9", sorted[1].Ward)
	assert.Equal(t, "10", sorted[2].Ward)
	assert.Equal(t, State{Column: "count", Direction: Ascending}, s.State(SupervisorReport))

	s.Reset()
	assert.Equal(t, State{}, s.State(WardReport))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Descending, ParseDirection("desc"))
	assert.Equal(t, Ascending, ParseDirection("asc"))
	assert.Equal(t, Ascending, ParseDirection(""))
	assert.Equal(t, "desc", Descending.String())
	assert.Equal(t, "date", CalendarDate.String())
}
