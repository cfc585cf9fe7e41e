package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/slip-report/internal/record"
)

func rec(name, id, date string) record.NormalizedRecord {
	return record.NormalizedRecord{SupervisorName: name, SupervisorID: id, Date: date, Time: "09:00"}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		rec      record.NormalizedRecord
		want     bool
	}{
		{"empty criteria", Criteria{}, rec("Asha", "S1", "bad"), true},
		{"name substring case-insensitive", Criteria{Supervisor: "ASH"}, rec("Asha", "S1", "05/01/2024"), true},
		{"id substring", Criteria{Supervisor: "S1"}, rec("Asha", "XS12", "05/01/2024"), true},
		{"id ignores case", Criteria{Supervisor: "xs"}, rec("Ravi", "XS12", "05/01/2024"), true},
		{"lowercase id", Criteria{Supervisor: "S1"}, rec("Ravi", "xs12", "05/01/2024"), true},
		{"id miss", Criteria{Supervisor: "s9"}, rec("Ravi", "XS12", "05/01/2024"), false},
		{"no match", Criteria{Supervisor: "mina"}, rec("Asha", "S1", "05/01/2024"), false},
		{"from inclusive", Criteria{From: day(2024, 1, 5)}, rec("Asha", "S1", "05/01/2024"), true},
		{"before from", Criteria{From: day(2024, 1, 6)}, rec("Asha", "S1", "05/01/2024"), false},
		{"to inclusive", Criteria{To: day(2024, 1, 5)}, rec("Asha", "S1", "5/1/2024"), true},
		{"after to", Criteria{To: day(2024, 1, 4)}, rec("Asha", "S1", "05/01/2024"), false},
		{"invalid date with bound", Criteria{From: day(2024, 1, 1)}, rec("Asha", "S1", "31/02/2024"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(tt.rec))
		})
	}
}

func TestKeep(t *testing.T) {
	assert.Nil(t, Criteria{}.Keep())
	assert.Nil(t, Criteria{Supervisor: "  "}.Keep())

	keep := Criteria{Supervisor: "ravi"}.Keep()
	require.NotNil(t, keep)
	assert.True(t, keep(rec("Ravi", "S3", "06/01/2024")))
	assert.False(t, keep(rec("Asha", "S1", "05/01/2024")))
}

func TestNew(t *testing.T) {
	c, err := New(" asha ", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), c.From)
	assert.Equal(t, day(2024, 1, 31), c.To)
	assert.True(t, c.Matches(rec("Asha", "S1", "15/01/2024")))

	_, err = New("", "01/01/2024", "")
	assert.Error(t, err)

	_, err = New("", "2024-02-01", "2024-01-01")
	assert.Error(t, err)

	c, err = New("", "", "")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}
