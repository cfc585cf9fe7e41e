// =============================================================================
// Slip Report - Derived Metrics and Report Structures
// =============================================================================
//
// This module finalizes an Accumulator into the two read-only reports handed
// to the rendering layers (terminal, HTTP, exporters):
//
//   1. SupervisorReport: one entry per supervisor key plus summary scalars
//   2. WardReport: one entry per expected ward (or a "no data" marker),
//      wards outside the expected set, and coverage scalars
//
// DERIVED METRICS:
//   - Working hours   = (last - first) in hours, rounded to 2 decimals
//   - Ward list       = distinct wards, comma-joined, first-appearance order
//   - Slips per ward  = count / distinct wards, rounded to 2 decimals
//   - Most active     = highest count; ties keep the first in report order
//   - Missing wards   = expected wards with no slips, in expected order
//
// =============================================================================

package report

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/slip-report/internal/aggregate"
	"github.com/ginjaninja78/slip-report/internal/record"
)

// =============================================================================
// SUPERVISOR REPORT
// =============================================================================

// WardDetail is one line of a supervisor's per-ward breakdown.
type WardDetail struct {
	Ward   string          `json:"ward"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// SupervisorEntry is one row of the supervisor report.
type SupervisorEntry struct {
	Name         string          `json:"name"`
	ID           string          `json:"id"`
	FirstDate    string          `json:"first_date"`
	FirstTime    string          `json:"first_time"`
	LastDate     string          `json:"last_date"`
	LastTime     string          `json:"last_time"`
	Count        int             `json:"count"`
	WorkingHours float64         `json:"working_hours"`
	WardList     string          `json:"ward_list"`
	SlipsPerWard float64         `json:"slips_per_ward"`
	Wards        []WardDetail    `json:"wards"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// DateRange spans the earliest first slip to the latest last slip.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Valid bool      `json:"valid"`
}

// String renders the range as "DD/MM/YYYY - DD/MM/YYYY", or "" when unknown.
func (r DateRange) String() string {
	if !r.Valid {
		return ""
	}
	return record.FormatDate(r.Start) + " - " + record.FormatDate(r.End)
}

// SupervisorSummary holds the summary cards of the supervisor report.
type SupervisorSummary struct {
	TotalSupervisors   int             `json:"total_supervisors"`
	TotalTransactions  int             `json:"total_transactions"`
	DateRange          DateRange       `json:"date_range"`
	MostActive         string          `json:"most_active"`
	MostActiveCount    int             `json:"most_active_count"`
	OverallTotalAmount decimal.Decimal `json:"overall_total_amount"`
}

// MostActiveLabel renders the most active supervisor as "Name (N slips)".
func (s SupervisorSummary) MostActiveLabel() string {
	if s.TotalSupervisors == 0 {
		return ""
	}
	return fmt.Sprintf("%s (%d slips)", s.MostActive, s.MostActiveCount)
}

// SupervisorReport is the per-supervisor activity summary.
type SupervisorReport struct {
	Entries []SupervisorEntry `json:"entries"`
	Summary SupervisorSummary `json:"summary"`
}

// =============================================================================
// WARD REPORT
// =============================================================================

// PropertyTypeDetail is one line of a ward's property-type breakdown.
type PropertyTypeDetail struct {
	PropertyType string `json:"property_type"`
	Count        int    `json:"count"`
}

// WardEntry is one row of the ward report. HasData is false for expected
// wards with no slips; every other field is then zero.
type WardEntry struct {
	Ward          string               `json:"ward"`
	HasData       bool                 `json:"has_data"`
	TotalSlips    int                  `json:"total_slips"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Supervisors   []string             `json:"supervisors"`
	PropertyTypes []PropertyTypeDetail `json:"property_types"`
}

// WardSummary holds the coverage scalars of the ward report.
type WardSummary struct {
	WardsWithData int             `json:"wards_with_data"`
	TotalSlips    int             `json:"total_slips"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	MissingCount  int             `json:"missing_count"`
	Missing       []string        `json:"missing"`
}

// WardReport is the per-ward collection summary.
type WardReport struct {
	// Entries has one row per expected ward, in expected order.
	Entries []WardEntry `json:"entries"`

	// Unlisted holds wards seen in the data but outside the expected set.
	Unlisted []WardEntry `json:"unlisted"`

	Summary WardSummary `json:"summary"`
}

// =============================================================================
// BUILDERS
// =============================================================================

// Build finalizes an accumulator into both reports.
//
// PARAMETERS:
//   - acc: The accumulator after the full aggregation pass.
//   - expected: The expected ward universe for coverage reporting.
func Build(acc *aggregate.Accumulator, expected WardSet) (SupervisorReport, WardReport) {
	return BuildSupervisorReport(acc), BuildWardReport(acc, expected)
}

// BuildSupervisorReport derives per-supervisor metrics and the summary.
// Entries are ordered by name (collated), then by id.
func BuildSupervisorReport(acc *aggregate.Accumulator) SupervisorReport {
	entries := lo.Map(acc.Supervisors(), func(s *aggregate.SupervisorAggregate, _ int) SupervisorEntry {
		return supervisorEntry(s)
	})

	compare := NewTextComparer()
	slices.SortStableFunc(entries, func(a, b SupervisorEntry) int {
		if c := compare(a.Name, b.Name); c != 0 {
			return c
		}
		return compare(a.ID, b.ID)
	})

	rpt := SupervisorReport{
		Entries: entries,
		Summary: SupervisorSummary{
			TotalSupervisors:   len(entries),
			TotalTransactions:  lo.SumBy(entries, func(e SupervisorEntry) int { return e.Count }),
			OverallTotalAmount: decimal.Zero,
			DateRange:          dateRange(acc.Supervisors()),
		},
	}

	for i, e := range entries {
		rpt.Summary.OverallTotalAmount = rpt.Summary.OverallTotalAmount.Add(e.TotalAmount)
		if i == 0 || e.Count > rpt.Summary.MostActiveCount {
			rpt.Summary.MostActive = e.Name
			rpt.Summary.MostActiveCount = e.Count
		}
	}

	return rpt
}

func supervisorEntry(s *aggregate.SupervisorAggregate) SupervisorEntry {
	wards := lo.Map(s.Wards, func(wb *aggregate.WardBreakdown, _ int) WardDetail {
		return WardDetail{Ward: wb.Ward, Count: wb.Count, Amount: wb.Amount}
	})

	return SupervisorEntry{
		Name:         s.Name,
		ID:           s.ID,
		FirstDate:    s.FirstDate,
		FirstTime:    s.FirstTime,
		LastDate:     s.LastDate,
		LastTime:     s.LastTime,
		Count:        s.Count,
		WorkingHours: workingHours(s.First, s.Last),
		WardList:     strings.Join(lo.Map(wards, func(w WardDetail, _ int) string { return w.Ward }), ", "),
		SlipsPerWard: round2(float64(s.Count) / float64(len(wards))),
		Wards:        wards,
		TotalAmount:  s.Amount,
	}
}

// workingHours is zero unless both timestamps are valid.
func workingHours(first, last record.Timestamp) float64 {
	if !first.Valid || !last.Valid {
		return 0
	}
	return round2(last.At.Sub(first.At).Hours())
}

func dateRange(sups []*aggregate.SupervisorAggregate) DateRange {
	var r DateRange
	for _, s := range sups {
		if s.First.Valid && (!r.Valid || s.First.At.Before(r.Start)) {
			r.Start = s.First.At
		}
		if s.Last.Valid && (!r.Valid || s.Last.At.After(r.End)) {
			r.End = s.Last.At
		}
		if s.First.Valid {
			r.Valid = true
		}
	}
	return r
}

// BuildWardReport derives the per-ward report and coverage against expected.
func BuildWardReport(acc *aggregate.Accumulator, expected WardSet) WardReport {
	rpt := WardReport{
		Entries: make([]WardEntry, 0, expected.Len()),
		Summary: WardSummary{TotalAmount: decimal.Zero, Missing: []string{}},
	}

	for _, id := range expected.IDs() {
		w := acc.Ward(id)
		if w == nil {
			rpt.Entries = append(rpt.Entries, WardEntry{Ward: id, TotalAmount: decimal.Zero})
			rpt.Summary.Missing = append(rpt.Summary.Missing, id)
			continue
		}
		rpt.Entries = append(rpt.Entries, wardEntry(w))
		rpt.Summary.WardsWithData++
	}

	rpt.Unlisted = lo.FilterMap(acc.Wards(), func(w *aggregate.WardAggregate, _ int) (WardEntry, bool) {
		return wardEntry(w), !expected.Contains(w.Ward)
	})

	for _, w := range acc.Wards() {
		rpt.Summary.TotalSlips += w.TotalSlips
		rpt.Summary.TotalAmount = rpt.Summary.TotalAmount.Add(w.TotalAmount)
	}
	rpt.Summary.MissingCount = len(rpt.Summary.Missing)

	return rpt
}

func wardEntry(w *aggregate.WardAggregate) WardEntry {
	return WardEntry{
		Ward:        w.Ward,
		HasData:     true,
		TotalSlips:  w.TotalSlips,
		TotalAmount: w.TotalAmount,
		Supervisors: slices.Clone(w.Supervisors),
		PropertyTypes: lo.Map(w.PropertyTypes, func(pt *aggregate.PropertyTypeCount, _ int) PropertyTypeDetail {
			return PropertyTypeDetail{PropertyType: pt.PropertyType, Count: pt.Count}
		}),
	}
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
