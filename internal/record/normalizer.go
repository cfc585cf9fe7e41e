// =============================================================================
// Slip Report - Record Normalizer
// =============================================================================
//
// This module converts one tokenized data line into a typed NormalizedRecord,
// or decides to drop it.
//
// DROP RULES (silent, not errors):
//   - The line is empty after trimming
//   - The line has no field at the highest required column position
//   - Supervisor name, date or time is empty after cleaning
//
// DEFAULTS (silent):
//   - Ward and property type fall back to "Unknown"
//   - Amount falls back to 0 when absent or unparsable
//
// Malformed dates do not drop the record: it keeps its count and amount but
// carries an invalid Timestamp, which is ignored by first/last tracking.
//
// =============================================================================

package record

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/slip-report/internal/csvparser"
	"github.com/ginjaninja78/slip-report/internal/schema"
)

// NormalizedRecord is one validated collection event (a slip).
type NormalizedRecord struct {
	// Line is the source line number, used to keep merges deterministic.
	Line int

	SupervisorName string
	SupervisorID   string

	// Date and Time are the cleaned input strings, kept for display.
	Date string
	Time string

	// Timestamp is Date and Time combined; may be invalid.
	Timestamp Timestamp

	Ward         string
	PropertyType string
	Amount       decimal.Decimal
}

// SupervisorKey returns the composite identity of the record's supervisor.
func (r NormalizedRecord) SupervisorKey() string {
	return SupervisorKey(r.SupervisorName, r.SupervisorID)
}

// keySeparator joins name and id. Names containing it could collide.
const keySeparator = "|"

// SupervisorKey joins a supervisor name and id into an aggregation key.
func SupervisorKey(name, id string) string {
	return name + keySeparator + id
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer turns data lines into records using a resolved ColumnIndex.
// It is stateless after construction and safe for concurrent use.
type Normalizer struct {
	index  *schema.ColumnIndex
	policy schema.OptionalPolicy

	// minFields is the field count a line needs to reach every required column.
	minFields int
}

// NewNormalizer creates a Normalizer for the given column index.
func NewNormalizer(index *schema.ColumnIndex) *Normalizer {
	return &Normalizer{
		index:     index,
		policy:    index.Policy(),
		minFields: index.MaxRequired() + 1,
	}
}

// Normalize converts a single data line.
//
// RETURNS:
//   - The record and true, or a zero record and false when the line is dropped.
func (n *Normalizer) Normalize(line csvparser.Line) (NormalizedRecord, bool) {
	if csvparser.IsBlank(line.Text) {
		return NormalizedRecord{}, false
	}

	fields := csvparser.ParseLine(strings.TrimSpace(line.Text))
	if len(fields) < n.minFields {
		return NormalizedRecord{}, false
	}

	rec := NormalizedRecord{
		Line:           line.Number,
		SupervisorName: n.field(fields, schema.SupervisorName),
		SupervisorID:   n.field(fields, schema.SupervisorID),
		Date:           n.field(fields, schema.Date),
		Time:           n.field(fields, schema.Time),
	}

	if rec.SupervisorName == "" || rec.Date == "" || rec.Time == "" {
		return NormalizedRecord{}, false
	}

	rec.Ward = n.label(fields, schema.WardName, n.policy.Ward)
	rec.PropertyType = n.label(fields, schema.PropertyType, n.policy.PropertyType)

	switch n.policy.Amount {
	case schema.UseColumn:
		rec.Amount = ParseAmount(n.field(fields, schema.Amount))
	default:
		rec.Amount = decimal.Zero
	}

	rec.Timestamp = Combine(rec.Date, rec.Time)

	return rec, true
}

// field extracts, unquotes and trims a column value. Columns past the end
// of a short row read as empty.
func (n *Normalizer) field(fields []string, col schema.Column) string {
	pos := n.index.Position(col)
	if pos == schema.NotFound || pos >= len(fields) {
		return ""
	}
	return strings.TrimSpace(csvparser.StripQuotes(fields[pos]))
}

// label reads an optional text column, falling back to the Unknown sentinel.
func (n *Normalizer) label(fields []string, col schema.Column, policy schema.Policy) string {
	if policy != schema.UseColumn {
		return schema.UnknownLabel
	}
	if value := n.field(fields, col); value != "" {
		return value
	}
	return schema.UnknownLabel
}
