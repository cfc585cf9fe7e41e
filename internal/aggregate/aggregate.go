// =============================================================================
// Slip Report - Aggregation Engine
// =============================================================================
//
// This module folds normalized records into two independently keyed tables:
//
//   1. Supervisors, keyed by "name|id", each with a nested per-ward breakdown
//   2. Wards, keyed by ward name, built across all supervisors
//
// Both tables keep the order in which keys first appeared. First/last
// timestamps are true min/max over all records of a supervisor; on an exact
// tie the earlier record keeps its date and time strings.
//
// The Accumulator is an explicit value: it is created empty, mutated only by
// Add and Merge, and handed to the report builder. Nothing is global, so two
// runs never share state.
//
// =============================================================================

package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/slip-report/internal/record"
)

// =============================================================================
// AGGREGATE TYPES
// =============================================================================

// WardBreakdown is one ward's share of a single supervisor's slips.
type WardBreakdown struct {
	Ward   string
	Count  int
	Amount decimal.Decimal
}

// SupervisorAggregate accumulates every slip of one supervisor key.
type SupervisorAggregate struct {
	Key  string
	Name string
	ID   string

	// FirstDate/FirstTime and LastDate/LastTime are the input strings of the
	// records holding the earliest and latest timestamps.
	FirstDate string
	FirstTime string
	LastDate  string
	LastTime  string

	First record.Timestamp
	Last  record.Timestamp

	Count  int
	Amount decimal.Decimal

	// Wards holds the breakdown in order of first appearance.
	Wards []*WardBreakdown

	wardIndex map[string]*WardBreakdown
}

// Ward returns the breakdown for a ward, or nil.
func (s *SupervisorAggregate) Ward(name string) *WardBreakdown {
	return s.wardIndex[name]
}

func newSupervisor(rec record.NormalizedRecord) *SupervisorAggregate {
	return &SupervisorAggregate{
		Key:       rec.SupervisorKey(),
		Name:      rec.SupervisorName,
		ID:        rec.SupervisorID,
		FirstDate: rec.Date,
		FirstTime: rec.Time,
		LastDate:  rec.Date,
		LastTime:  rec.Time,
		First:     rec.Timestamp,
		Last:      rec.Timestamp,
		Amount:    decimal.Zero,
		wardIndex: make(map[string]*WardBreakdown),
	}
}

// takeFirst reports whether a candidate timestamp should replace the current
// first-seen one. An invalid current value is replaced by any valid one.
func takeFirst(current, candidate record.Timestamp) bool {
	return candidate.Valid && (!current.Valid || candidate.Before(current))
}

func takeLast(current, candidate record.Timestamp) bool {
	return candidate.Valid && (!current.Valid || candidate.After(current))
}

func (s *SupervisorAggregate) observe(rec record.NormalizedRecord) {
	if takeFirst(s.First, rec.Timestamp) {
		s.First = rec.Timestamp
		s.FirstDate = rec.Date
		s.FirstTime = rec.Time
	}
	if takeLast(s.Last, rec.Timestamp) {
		s.Last = rec.Timestamp
		s.LastDate = rec.Date
		s.LastTime = rec.Time
	}
}

func (s *SupervisorAggregate) addWard(ward string, count int, amount decimal.Decimal) {
	wb, ok := s.wardIndex[ward]
	if !ok {
		wb = &WardBreakdown{Ward: ward, Amount: decimal.Zero}
		s.wardIndex[ward] = wb
		s.Wards = append(s.Wards, wb)
	}
	wb.Count += count
	wb.Amount = wb.Amount.Add(amount)
}

// PropertyTypeCount is the number of slips of one property type in a ward.
type PropertyTypeCount struct {
	PropertyType string
	Count        int
}

// WardAggregate accumulates every slip of one ward across all supervisors.
type WardAggregate struct {
	Ward        string
	TotalSlips  int
	TotalAmount decimal.Decimal

	// PropertyTypes holds counts in order of first appearance.
	PropertyTypes []*PropertyTypeCount

	// Supervisors lists distinct supervisor names in insertion order.
	Supervisors []string

	propertyIndex  map[string]*PropertyTypeCount
	supervisorSeen map[string]struct{}
}

func newWard(name string) *WardAggregate {
	return &WardAggregate{
		Ward:           name,
		TotalAmount:    decimal.Zero,
		propertyIndex:  make(map[string]*PropertyTypeCount),
		supervisorSeen: make(map[string]struct{}),
	}
}

func (w *WardAggregate) addPropertyType(label string, count int) {
	pt, ok := w.propertyIndex[label]
	if !ok {
		pt = &PropertyTypeCount{PropertyType: label}
		w.propertyIndex[label] = pt
		w.PropertyTypes = append(w.PropertyTypes, pt)
	}
	pt.Count += count
}

func (w *WardAggregate) addSupervisor(name string) {
	if _, ok := w.supervisorSeen[name]; ok {
		return
	}
	w.supervisorSeen[name] = struct{}{}
	w.Supervisors = append(w.Supervisors, name)
}


// =============================================================================
// ACCUMULATOR
// =============================================================================

// Stats counts what happened to the input lines of a run.
type Stats struct {
	// Lines is the number of data lines read (header excluded).
	Lines int `json:"lines"`

	// Records is the number of records that reached aggregation.
	Records int `json:"records"`

	// Skipped is the number of lines dropped by the normalizer.
	Skipped int `json:"skipped"`

	// Filtered is the number of valid records excluded by a filter.
	Filtered int `json:"filtered"`
}

func (s *Stats) add(o Stats) {
	s.Lines += o.Lines
	s.Records += o.Records
	s.Skipped += o.Skipped
	s.Filtered += o.Filtered
}

// Accumulator holds the supervisor and ward tables of one run.
type Accumulator struct {
	Stats Stats

	supervisors     map[string]*SupervisorAggregate
	supervisorOrder []*SupervisorAggregate

	wards     map[string]*WardAggregate
	wardOrder []*WardAggregate
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		supervisors: make(map[string]*SupervisorAggregate),
		wards:       make(map[string]*WardAggregate),
	}
}

// Add folds one record into both tables.
//
// STEPS:
//  1. Upsert the supervisor aggregate (count, amount, first/last)
//  2. Upsert the ward breakdown nested under that supervisor
//  3. Upsert the global ward aggregate (slips, amount, property type, supervisors)
func (a *Accumulator) Add(rec record.NormalizedRecord) {
	a.Stats.Records++

	key := rec.SupervisorKey()
	sup, ok := a.supervisors[key]
	if !ok {
		sup = newSupervisor(rec)
		a.supervisors[key] = sup
		a.supervisorOrder = append(a.supervisorOrder, sup)
	} else {
		sup.observe(rec)
	}
	sup.Count++
	sup.Amount = sup.Amount.Add(rec.Amount)
	sup.addWard(rec.Ward, 1, rec.Amount)

	ward := a.ward(rec.Ward)
	ward.TotalSlips++
	ward.TotalAmount = ward.TotalAmount.Add(rec.Amount)
	ward.addPropertyType(rec.PropertyType, 1)
	ward.addSupervisor(rec.SupervisorName)
}

func (a *Accumulator) ward(name string) *WardAggregate {
	w, ok := a.wards[name]
	if !ok {
		w = newWard(name)
		a.wards[name] = w
		a.wardOrder = append(a.wardOrder, w)
	}
	return w
}

// Merge folds a partial accumulator built from LATER lines into a.
//
// Counts, sums and sets merge associatively. First/last timestamps keep a's
// value on ties, which matches the sequential rule because every line of a
// precedes every line of other. Key order stays first-appearance order.
// other must not be used afterwards.
func (a *Accumulator) Merge(other *Accumulator) {
	a.Stats.add(other.Stats)

	for _, src := range other.supervisorOrder {
		dst, ok := a.supervisors[src.Key]
		if !ok {
			a.supervisors[src.Key] = src
			a.supervisorOrder = append(a.supervisorOrder, src)
			continue
		}

		if takeFirst(dst.First, src.First) {
			dst.First, dst.FirstDate, dst.FirstTime = src.First, src.FirstDate, src.FirstTime
		}
		if takeLast(dst.Last, src.Last) {
			dst.Last, dst.LastDate, dst.LastTime = src.Last, src.LastDate, src.LastTime
		}
		dst.Count += src.Count
		dst.Amount = dst.Amount.Add(src.Amount)
		for _, wb := range src.Wards {
			dst.addWard(wb.Ward, wb.Count, wb.Amount)
		}
	}

	for _, src := range other.wardOrder {
		dst, ok := a.wards[src.Ward]
		if !ok {
			a.wards[src.Ward] = src
			a.wardOrder = append(a.wardOrder, src)
			continue
		}

		dst.TotalSlips += src.TotalSlips
		dst.TotalAmount = dst.TotalAmount.Add(src.TotalAmount)
		for _, pt := range src.PropertyTypes {
			dst.addPropertyType(pt.PropertyType, pt.Count)
		}
		for _, name := range src.Supervisors {
			dst.addSupervisor(name)
		}
	}
}

// Supervisors returns the supervisor aggregates in first-appearance order.
func (a *Accumulator) Supervisors() []*SupervisorAggregate {
	return a.supervisorOrder
}

// Supervisor returns the aggregate for a key, or nil.
func (a *Accumulator) Supervisor(key string) *SupervisorAggregate {
	return a.supervisors[key]
}

// Wards returns the ward aggregates in first-appearance order.
func (a *Accumulator) Wards() []*WardAggregate {
	return a.wardOrder
}

// Ward returns the aggregate for a ward name, or nil.
func (a *Accumulator) Ward(name string) *WardAggregate {
	return a.wards[name]
}
