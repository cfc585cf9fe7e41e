// =============================================================================
// Slip Report - Schema Resolver
// =============================================================================
//
// This module maps the header labels of a slip export to the logical columns
// the analysis needs. It runs once per input, on the header line.
//
// COLUMNS:
//   | Logical column  | Header label          | Required |
//   |-----------------|-----------------------|----------|
//   | supervisor_name | Supervisor Name       | yes      |
//   | supervisor_id   | Supervisor ID         | yes      |
//   | date            | Date                  | yes      |
//   | time            | Time                  | yes      |
//   | ward_name       | Ward Name             | no       |
//   | amount          | Amount Collected      | no       |
//   | property_type   | Property Type Name    | no       |
//
// Label matching is exact and case-sensitive. A missing required column
// rejects the whole input with a SchemaError; a missing optional column is
// turned into an OptionalPolicy the normalizer applies to every record.
//
// =============================================================================

package schema

import (
	"fmt"
	"strings"
)

// NotFound marks a column that is absent from the header row.
const NotFound = -1

// UnknownLabel is the sentinel used for absent ward and property type values.
const UnknownLabel = "Unknown"

// =============================================================================
// LOGICAL COLUMNS
// =============================================================================

// Column identifies one logical column of the input.
type Column string

const (
	SupervisorName Column = "supervisor_name"
	SupervisorID   Column = "supervisor_id"
	Date           Column = "date"
	Time           Column = "time"
	WardName       Column = "ward_name"
	Amount         Column = "amount"
	PropertyType   Column = "property_type"
)

// Labels maps each logical column to the header label that identifies it.
var Labels = map[Column]string{
	SupervisorName: "Supervisor Name",
	SupervisorID:   "Supervisor ID",
	Date:           "Date",
	Time:           "Time",
	WardName:       "Ward Name",
	Amount:         "Amount Collected",
	PropertyType:   "Property Type Name",
}

// Required lists the columns that must be present, in reporting order.
var Required = []Column{SupervisorName, SupervisorID, Date, Time}

// Optional lists the columns that degrade to a default when absent.
var Optional = []Column{WardName, Amount, PropertyType}

// =============================================================================
// OPTIONAL COLUMN POLICY
// =============================================================================

// Policy is the decision taken for an optional column at resolution time.
type Policy int

const (
	// UseColumn reads the value from the row.
	UseColumn Policy = iota

	// UseSentinel substitutes UnknownLabel for every record.
	UseSentinel

	// UseZero substitutes a literal zero for every record.
	UseZero
)

// String returns a readable name for logging.
func (p Policy) String() string {
	switch p {
	case UseColumn:
		return "column"
	case UseSentinel:
		return "sentinel"
	case UseZero:
		return "zero"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// OptionalPolicy holds the per-column decisions for the optional columns.
type OptionalPolicy struct {
	Ward         Policy
	Amount       Policy
	PropertyType Policy
}

// =============================================================================
// COLUMN INDEX
// =============================================================================

// ColumnIndex maps logical columns to zero-based field positions.
type ColumnIndex struct {
	positions map[Column]int

	// Headers is the cleaned header row the index was built from.
	Headers []string
}

// Position returns the field position of a column, or NotFound.
func (ci *ColumnIndex) Position(col Column) int {
	if pos, ok := ci.positions[col]; ok {
		return pos
	}
	return NotFound
}

// Has reports whether a column was found in the header row.
func (ci *ColumnIndex) Has(col Column) bool {
	return ci.Position(col) != NotFound
}

// MaxRequired returns the highest position among the required columns.
// Rows with no more fields than this are too short to carry a record.
func (ci *ColumnIndex) MaxRequired() int {
	highest := NotFound
	for _, col := range Required {
		if pos := ci.Position(col); pos > highest {
			highest = pos
		}
	}
	return highest
}

// Policy returns the typed decisions for the optional columns.
func (ci *ColumnIndex) Policy() OptionalPolicy {
	policy := OptionalPolicy{
		Ward:         UseColumn,
		Amount:       UseColumn,
		PropertyType: UseColumn,
	}
	if !ci.Has(WardName) {
		policy.Ward = UseSentinel
	}
	if !ci.Has(Amount) {
		policy.Amount = UseZero
	}
	if !ci.Has(PropertyType) {
		policy.PropertyType = UseSentinel
	}
	return policy
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolve builds a ColumnIndex from a cleaned header row.
//
// PARAMETERS:
//   - headers: Header labels, already stripped of quotes and byte-order marks.
//
// RETURNS:
//   - The resolved ColumnIndex.
//   - A *SchemaError if any required column is absent.
//
// When a label appears more than once the first occurrence wins.
func Resolve(headers []string) (*ColumnIndex, error) {
	ci := &ColumnIndex{
		positions: make(map[Column]int, len(Labels)),
		Headers:   headers,
	}

	for col, label := range Labels {
		for i, header := range headers {
			if strings.TrimSpace(header) == label {
				ci.positions[col] = i
				break
			}
		}
	}

	var missing []string
	for _, col := range Required {
		if !ci.Has(col) {
			missing = append(missing, Labels[col])
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Found: headers}
	}

	return ci, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// SchemaError reports required columns missing from the header row.
// It aborts the whole analysis; no partial report is produced.
type SchemaError struct {
	// Missing lists the labels of the absent required columns.
	Missing []string

	// Found lists the header labels that were present.
	Found []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("required columns not found (%s); found headers: %s",
		strings.Join(e.Missing, ", "),
		strings.Join(e.Found, ", "),
	)
}
