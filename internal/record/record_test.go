package record

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/slip-report/internal/csvparser"
	"github.com/ginjaninja78/slip-report/internal/schema"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"₹150.50", "150.5"},
		{"1,250.00", "1250"},
		{"Rs. 99", "0.99"},
		{"", "0"},
		{"n/a", "0"},
		{".", "0"},
		{".5", "0.5"},
		{"5.", "5"},
		{"1.2.3", "1.2"},
		{"-40", "40"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseAmount(tt.raw)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("05/01/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), got)

	got, ok = ParseDate("5/1/2024")
	require.True(t, ok)
	assert.Equal(t, 5, got.Day())

	for _, bad := range []string{"", "2024-01-05", "31/02/2024", "aa/01/2024", "05/13/2024", "05/01"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"09:00", 9 * time.Hour},
		{"9:00", 9 * time.Hour},
		{"17:30:15", 17*time.Hour + 30*time.Minute + 15*time.Second},
		{"5:30 pm", 17*time.Hour + 30*time.Minute},
		{"12:05 AM", 5 * time.Minute},
	}
	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, ok := ParseClock("noon")
	assert.False(t, ok)
}

func TestTimestampComparison(t *testing.T) {
	early := Combine("05/01/2024", "09:00")
	late := Combine("05/01/2024", "17:30")
	invalid := Combine("garbage", "09:00")

	assert.True(t, early.Before(late))
	assert.True(t, late.After(early))
	assert.False(t, early.Before(early))
	assert.False(t, invalid.Valid)
	assert.False(t, invalid.Before(late))
	assert.False(t, late.Before(invalid))
	assert.False(t, invalid.After(early))
}

func newNormalizer(t *testing.T, header string) *Normalizer {
	t.Helper()
	ci, err := schema.Resolve(csvparser.CleanHeaders(csvparser.ParseLine(header)))
	require.NoError(t, err)
	return NewNormalizer(ci)
}

func TestNormalize(t *testing.T) {
	n := newNormalizer(t, "Supervisor Name,Supervisor ID,Date,Time,Ward Name,Amount Collected,Property Type Name")

	rec, ok := n.Normalize(csvparser.Line{Number: 2, Text: `"Asha","S1","05/01/2024","09:00","12","₹150.50","Residential"` + "\r"})
	require.True(t, ok)

	assert.Equal(t, 2, rec.Line)
	assert.Equal(t, "Asha", rec.SupervisorName)
	assert.Equal(t, "S1", rec.SupervisorID)
	assert.Equal(t, "Asha|S1", rec.SupervisorKey())
	assert.Equal(t, "05/01/2024", rec.Date)
	assert.Equal(t, "09:00", rec.Time)
	assert.Equal(t, "12", rec.Ward)
	assert.Equal(t, "Residential", rec.PropertyType)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("150.50")))
	assert.True(t, rec.Timestamp.Valid)
}

func TestNormalizeDrops(t *testing.T) {
	n := newNormalizer(t, "Supervisor Name,Supervisor ID,Date,Time,Ward Name")

	for name, text := range map[string]string{
		"blank":        "   ",
		"too short":    `"Asha","S1","05/01/2024"`,
		"empty name":   `"","S1","05/01/2024","09:00","3"`,
		"empty date":   `"Asha","S1","","09:00","3"`,
		"empty time":   `"Asha","S1","05/01/2024",""`,
		"quoted blank": `"""","S1","05/01/2024","09:00"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := n.Normalize(csvparser.Line{Number: 2, Text: text})
			assert.False(t, ok)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	t.Run("optional columns absent", func(t *testing.T) {
		n := newNormalizer(t, "Supervisor Name,Supervisor ID,Date,Time")
		rec, ok := n.Normalize(csvparser.Line{Number: 2, Text: "Asha,,05/01/2024,09:00"})
		require.True(t, ok)
		assert.Equal(t, "", rec.SupervisorID)
		assert.Equal(t, schema.UnknownLabel, rec.Ward)
		assert.Equal(t, schema.UnknownLabel, rec.PropertyType)
		assert.True(t, rec.Amount.IsZero())
	})

	t.Run("optional fields empty or missing", func(t *testing.T) {
		n := newNormalizer(t, "Supervisor Name,Supervisor ID,Date,Time,Ward Name,Amount Collected")
		rec, ok := n.Normalize(csvparser.Line{Number: 2, Text: "Asha,S1,05/01/2024,09:00,"})
		require.True(t, ok)
		assert.Equal(t, schema.UnknownLabel, rec.Ward)
		assert.True(t, rec.Amount.IsZero())
	})

	t.Run("malformed date keeps record", func(t *testing.T) {
		n := newNormalizer(t, "Supervisor Name,Supervisor ID,Date,Time")
		rec, ok := n.Normalize(csvparser.Line{Number: 2, Text: "Asha,S1,2024-01-05,09:00"})
		require.True(t, ok)
		assert.False(t, rec.Timestamp.Valid)
	})
}
