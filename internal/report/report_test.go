package report

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/slip-report/internal/aggregate"
	"github.com/ginjaninja78/slip-report/internal/csvparser"
	"github.com/ginjaninja78/slip-report/internal/record"
	"github.com/ginjaninja78/slip-report/internal/schema"
)

const header = "Supervisor Name,Supervisor ID,Date,Time,Ward Name,Amount Collected,Property Type Name"

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func accumulate(t *testing.T, rows ...string) *aggregate.Accumulator {
	t.Helper()
	ci, err := schema.Resolve(csvparser.CleanHeaders(csvparser.ParseLine(header)))
	require.NoError(t, err)

	lines := make([]csvparser.Line, len(rows))
	for i, row := range rows {
		lines[i] = csvparser.Line{Number: i + 2, Text: row}
	}
	acc, err := aggregate.Run(context.Background(), lines, record.NewNormalizer(ci), aggregate.Options{})
	require.NoError(t, err)
	return acc
}

func TestSupervisorReportWorkingHours(t *testing.T) {
	acc := accumulate(t,
		`"Asha","S1","05/01/2024","09:00","12","₹150.50","Residential"`,
		`"Asha","S1","05/01/2024","17:30","12","49.50","Commercial"`,
	)

	rpt := BuildSupervisorReport(acc)
	require.Len(t, rpt.Entries, 1)

	e := rpt.Entries[0]
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, "09:00", e.FirstTime)
	assert.Equal(t, "17:30", e.LastTime)
	assert.InDelta(t, 8.5, e.WorkingHours, 1e-9)
	assert.Equal(t, "12", e.WardList)
	assert.InDelta(t, 2.0, e.SlipsPerWard, 1e-9)
	assert.True(t, e.TotalAmount.Equal(decimal.RequireFromString("200")))
}

func TestSupervisorReportSummary(t *testing.T) {
	acc := accumulate(t,
		`"Ravi","S3","06/01/2024","10:00","7","3"`,
		`"Asha","S1","05/01/2024","09:00","12","1"`,
		`"Ravi","S3","06/01/2024","08:15","8","2"`,
		`"Mina","S4","07/01/2024","18:00","7","4"`,
		`"Asha","S1","05/01/2024","09:20","13","1"`,
		`"Asha","S1","bad","09:20","13","1"`,
	)

	rpt := BuildSupervisorReport(acc)

	names := make([]string, len(rpt.Entries))
	for i, e := range rpt.Entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"Asha", "Mina", "Ravi"}, names)

	asha := rpt.Entries[0]
	assert.Equal(t, "12, 13", asha.WardList)
	assert.InDelta(t, 1.5, asha.SlipsPerWard, 1e-9)
	assert.InDelta(t, 0.33, asha.WorkingHours, 1e-9)
	wantWards := []WardDetail{
		{Ward: "12", Count: 1, Amount: decimal.RequireFromString("1")},
		{Ward: "13", Count: 2, Amount: decimal.RequireFromString("2")},
	}
	if diff := cmp.Diff(wantWards, asha.Wards, decimalEqual); diff != "" {
		t.Errorf("ward breakdown mismatch (-want +got):\n%s", diff)
	}

	s := rpt.Summary
	assert.Equal(t, 3, s.TotalSupervisors)
	assert.Equal(t, 6, s.TotalTransactions)
	assert.Equal(t, "Asha", s.MostActive)
	assert.Equal(t, "Asha (3 slips)", s.MostActiveLabel())
	assert.True(t, s.OverallTotalAmount.Equal(decimal.RequireFromString("12")))
	assert.Equal(t, "05/01/2024 - 07/01/2024", s.DateRange.String())
}

func TestMostActiveTieKeepsFirstInReportOrder(t *testing.T) {
	acc := accumulate(t,
		`"Zed","Z1","05/01/2024","09:00","1"`,
		`"Abe","A1","05/01/2024","09:00","1"`,
	)
	assert.Equal(t, "Abe", BuildSupervisorReport(acc).Summary.MostActive)
}

func TestEmptyReports(t *testing.T) {
	acc := accumulate(t)
	sup, wards := Build(acc, NewWardRange(1, 3))

	assert.Empty(t, sup.Entries)
	assert.Equal(t, "", sup.Summary.MostActiveLabel())
	assert.Equal(t, "", sup.Summary.DateRange.String())
	assert.Equal(t, []string{"1", "2", "3"}, wards.Summary.Missing)
	assert.Equal(t, 0, wards.Summary.WardsWithData)
}

func TestWardReportCoverage(t *testing.T) {
	acc := accumulate(t,
		`"Asha","S1","05/01/2024","09:00","2","10","Residential"`,
		`"Ravi","S3","05/01/2024","10:00","2","5","Commercial"`,
		`"Asha","S1","05/01/2024","11:00","2","5","Residential"`,
		`"Asha","S1","05/01/2024","12:00","","1"`,
		`"Mina","S4","05/01/2024","12:00","4","1"`,
	)

	rpt := BuildWardReport(acc, NewWardRange(1, 5))

	require.Len(t, rpt.Entries, 5)
	want := WardEntry{
		Ward:        "2",
		HasData:     true,
		TotalSlips:  3,
		TotalAmount: decimal.RequireFromString("20"),
		Supervisors: []string{"Asha", "Ravi"},
		PropertyTypes: []PropertyTypeDetail{
			{PropertyType: "Residential", Count: 2},
			{PropertyType: "Commercial", Count: 1},
		},
	}
	if diff := cmp.Diff(want, rpt.Entries[1], decimalEqual); diff != "" {
		t.Errorf("ward 2 mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, rpt.Entries[0].HasData)

	assert.Equal(t, 2, rpt.Summary.WardsWithData)
	assert.Equal(t, []string{"1", "3", "5"}, rpt.Summary.Missing)
	assert.Equal(t, 3, rpt.Summary.MissingCount)
	assert.Equal(t, 5, rpt.Summary.TotalSlips)
	assert.True(t, rpt.Summary.TotalAmount.Equal(decimal.RequireFromString("22")))

	require.Len(t, rpt.Unlisted, 1)
	assert.Equal(t, schema.UnknownLabel, rpt.Unlisted[0].Ward)

	// missing and with-data partition the expected set
	seen := map[string]bool{}
	for _, id := range rpt.Summary.Missing {
		seen[id] = true
	}
	for _, e := range rpt.Entries {
		assert.Equal(t, !e.HasData, seen[e.Ward], e.Ward)
	}
}

func TestWardSet(t *testing.T) {
	ws := DefaultWardSet()
	assert.Equal(t, 70, ws.Len())
	assert.Equal(t, "1", ws.IDs()[0])
	assert.Equal(t, "70", ws.IDs()[69])
	assert.True(t, ws.Contains("35"))
	assert.False(t, ws.Contains("71"))

	custom := NewWardSet([]string{"A", "B", "A"})
	assert.Equal(t, []string{"A", "B"}, custom.IDs())
	assert.Equal(t, 0, NewWardRange(5, 1).Len())
}

func TestDeterministic(t *testing.T) {
	rows := []string{
		`"Asha","S1","05/01/2024","09:00","2","10","Residential"`,
		`"Ravi","S3","05/01/2024","10:00","3","5","Commercial"`,
	}
	s1, w1 := Build(accumulate(t, rows...), DefaultWardSet())
	s2, w2 := Build(accumulate(t, rows...), DefaultWardSet())
	assert.Equal(t, s1, s2)
	assert.Equal(t, w1, w2)
}
