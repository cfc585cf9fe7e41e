// =============================================================================
// Slip Report - Sort Columns
// =============================================================================
//
// This file registers the sortable columns of each report and the comparison
// kind each one uses. Column ids are the ones accepted by the CLI flags, the
// config file and the HTTP sort endpoint.
//
// =============================================================================

package sorter

import (
	"strings"

	"github.com/ginjaninja78/slip-report/internal/report"
)

// supervisorColumns are the sortable columns of the supervisor report.
var supervisorColumns = map[string]Column[report.SupervisorEntry]{
	"name":           lexical("name", func(e report.SupervisorEntry) string { return e.Name }),
	"id":             lexical("id", func(e report.SupervisorEntry) string { return e.ID }),
	"first_date":     dated("first_date", CalendarDate, func(e report.SupervisorEntry) string { return e.FirstDate }),
	"first_time":     dated("first_time", TimeOfDay, func(e report.SupervisorEntry) string { return e.FirstTime }),
	"last_date":      dated("last_date", CalendarDate, func(e report.SupervisorEntry) string { return e.LastDate }),
	"last_time":      dated("last_time", TimeOfDay, func(e report.SupervisorEntry) string { return e.LastTime }),
	"count":          numeric("count", func(e report.SupervisorEntry) float64 { return float64(e.Count) }),
	"working_hours":  numeric("working_hours", func(e report.SupervisorEntry) float64 { return e.WorkingHours }),
	"slips_per_ward": numeric("slips_per_ward", func(e report.SupervisorEntry) float64 { return e.SlipsPerWard }),
	"total_amount":   numeric("total_amount", func(e report.SupervisorEntry) float64 { return e.TotalAmount.InexactFloat64() }),
	"ward_list":      lexical("ward_list", func(e report.SupervisorEntry) string { return e.WardList }),
}

// wardColumns are the sortable columns of the ward report. Entries without
// data sort as zero on numeric columns.
var wardColumns = map[string]Column[report.WardEntry]{
	"ward":             natural("ward", func(e report.WardEntry) string { return e.Ward }),
	"total_slips":      numeric("total_slips", func(e report.WardEntry) float64 { return float64(e.TotalSlips) }),
	"total_amount":     numeric("total_amount", func(e report.WardEntry) float64 { return e.TotalAmount.InexactFloat64() }),
	"supervisor_count": numeric("supervisor_count", func(e report.WardEntry) float64 { return float64(len(e.Supervisors)) }),
	"supervisors":      lexical("supervisors", func(e report.WardEntry) string { return strings.Join(e.Supervisors, ", ") }),
}

// SupervisorColumn looks up a supervisor report column.
func SupervisorColumn(id string) (Column[report.SupervisorEntry], bool) {
	col, ok := supervisorColumns[id]
	return col, ok
}

// WardColumn looks up a ward report column.
func WardColumn(id string) (Column[report.WardEntry], bool) {
	col, ok := wardColumns[id]
	return col, ok
}

func lexical[T any](id string, text func(T) string) Column[T] {
	return Column[T]{ID: id, Kind: Lexical, Text: text}
}

func natural[T any](id string, text func(T) string) Column[T] {
	return Column[T]{ID: id, Kind: Lexical, Text: text, NaturalDigits: true}
}

func dated[T any](id string, kind Kind, text func(T) string) Column[T] {
	return Column[T]{ID: id, Kind: kind, Text: text}
}

func numeric[T any](id string, number func(T) float64) Column[T] {
	return Column[T]{ID: id, Kind: Numeric, Number: number}
}
