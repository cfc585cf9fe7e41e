// =============================================================================
// Slip Report - Report Exporters
// =============================================================================
//
// This module writes a finished analysis to files. Each output format maps
// to one or more artifacts; an artifact is one file:
//
//   | Format | Artifacts                  | Library                |
//   |--------|----------------------------|------------------------|
//   | xlsx   | report.xlsx (3 sheets)     | excelize               |
//   | xml    | report.xml                 | encoding/xml escaping  |
//   | csv    | supervisors.csv, wards.csv | encoding/csv           |
//   | json   | report.json                | encoding/json          |
//
// The artifact's Report name fills the {report} placeholder of the output
// file name format.
//
// =============================================================================

package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/slip-report/internal/aggregate"
	"github.com/ginjaninja78/slip-report/internal/report"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Formats lists every supported format.
var Formats = []string{FormatXLSX, FormatXML, FormatCSV, FormatJSON}

// noData marks expected wards without slips in tabular outputs.
const noData = "No data"

// Document is everything an exporter renders.
type Document struct {
	ID          string                  `json:"id"`
	Source      string                  `json:"source"`
	GeneratedAt time.Time               `json:"generated_at"`
	Supervisors report.SupervisorReport `json:"supervisors"`
	Wards       report.WardReport       `json:"wards"`
	Stats       aggregate.Stats         `json:"stats"`
}

// Artifact is one output file of a format.
type Artifact struct {
	// Report fills the {report} placeholder.
	Report string

	// Ext is the file extension including the dot.
	Ext string

	Write func(w io.Writer, doc Document) error
}

// Artifacts returns the files produced for format.
func Artifacts(format string) ([]Artifact, error) {
	switch format {
	case FormatXLSX:
		return []Artifact{{Report: "report", Ext: ".xlsx", Write: WriteXLSX}}, nil
	case FormatXML:
		return []Artifact{{Report: "report", Ext: ".xml", Write: WriteXML}}, nil
	case FormatJSON:
		return []Artifact{{Report: "report", Ext: ".json", Write: WriteJSON}}, nil
	case FormatCSV:
		return []Artifact{
			{Report: "supervisors", Ext: ".csv", Write: func(w io.Writer, doc Document) error {
				return WriteSupervisorsCSV(w, doc.Supervisors)
			}},
			{Report: "wards", Ext: ".csv", Write: func(w io.Writer, doc Document) error {
				return WriteWardsCSV(w, doc.Wards)
			}},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// =============================================================================
// SHARED FORMATTING
// =============================================================================

var supervisorHeaders = []string{
	"Supervisor Name", "Supervisor ID", "First Slip Date", "First Slip Time",
	"Last Slip Date", "Last Slip Time", "Total Slips", "Working Hours",
	"Ward List", "Slips per Ward", "Total Amount", "Ward Details",
}

var wardHeaders = []string{
	"Ward", "Total Slips", "Total Amount", "Supervisors", "Property Types",
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// wardDetails renders a supervisor's per-ward breakdown on one line.
func wardDetails(wards []report.WardDetail) string {
	return strings.Join(lo.Map(wards, func(w report.WardDetail, _ int) string {
		return fmt.Sprintf("Ward: %s | Slips: %d | Amount: %s", w.Ward, w.Count, money(w.Amount))
	}), "; ")
}

func propertyTypes(types []report.PropertyTypeDetail) string {
	return strings.Join(lo.Map(types, func(p report.PropertyTypeDetail, _ int) string {
		return fmt.Sprintf("%s: %d", p.PropertyType, p.Count)
	}), ", ")
}

func supervisorRecord(e report.SupervisorEntry) []string {
	return []string{
		e.Name, e.ID, e.FirstDate, e.FirstTime, e.LastDate, e.LastTime,
		strconv.Itoa(e.Count), fixed2(e.WorkingHours), e.WardList,
		fixed2(e.SlipsPerWard), money(e.TotalAmount), wardDetails(e.Wards),
	}
}

func wardRecord(e report.WardEntry) []string {
	if !e.HasData {
		return []string{e.Ward, noData, "", "", ""}
	}
	return []string{
		e.Ward, strconv.Itoa(e.TotalSlips), money(e.TotalAmount),
		strings.Join(e.Supervisors, ", "), propertyTypes(e.PropertyTypes),
	}
}
