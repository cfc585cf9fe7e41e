// =============================================================================
// Slip Report - XLSX Exporter
// =============================================================================
//
// This file writes a Document as an Excel workbook with three sheets:
// Supervisors, Wards and Summary. Counts and amounts are written as numeric
// cells so the workbook can be re-sorted and summed in a spreadsheet.
//
// =============================================================================

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/slip-report/internal/report"
)

// Sheet names of the XLSX workbook.
const (
	SupervisorSheet = "Supervisors"
	WardSheet       = "Wards"
	SummarySheet    = "Summary"
)

// WriteXLSX writes the workbook with one sheet per report and a summary sheet.
//
// SHEET LAYOUT:
//   - Supervisors: one row per entry, numeric cells for counts and amounts
//   - Wards: expected wards in order, then unlisted wards
//   - Summary: label/value pairs of both report summaries
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SupervisorSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{WardSheet, SummarySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSupervisorSheet(f, doc.Supervisors, bold); err != nil {
		return err
	}
	if err := writeWardSheet(f, doc.Wards, bold); err != nil {
		return err
	}
	if err := writeSummarySheet(f, doc, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSupervisorSheet(f *excelize.File, rpt report.SupervisorReport, headerStyle int) error {
	if err := setRow(f, SupervisorSheet, 1, toCells(supervisorHeaders)); err != nil {
		return err
	}
	for i, e := range rpt.Entries {
		row := []interface{}{
			e.Name, e.ID, e.FirstDate, e.FirstTime, e.LastDate, e.LastTime,
			e.Count, e.WorkingHours, e.WardList, e.SlipsPerWard,
			e.TotalAmount.InexactFloat64(), wardDetails(e.Wards),
		}
		if err := setRow(f, SupervisorSheet, i+2, row); err != nil {
			return err
		}
	}
	return finishSheet(f, SupervisorSheet, len(supervisorHeaders), headerStyle)
}

func writeWardSheet(f *excelize.File, rpt report.WardReport, headerStyle int) error {
	if err := setRow(f, WardSheet, 1, toCells(wardHeaders)); err != nil {
		return err
	}
	entries := append(append([]report.WardEntry{}, rpt.Entries...), rpt.Unlisted...)
	for i, e := range entries {
		var row []interface{}
		if e.HasData {
			row = []interface{}{
				e.Ward, e.TotalSlips, e.TotalAmount.InexactFloat64(),
				strings.Join(e.Supervisors, ", "), propertyTypes(e.PropertyTypes),
			}
		} else {
			row = []interface{}{e.Ward, noData}
		}
		if err := setRow(f, WardSheet, i+2, row); err != nil {
			return err
		}
	}
	return finishSheet(f, WardSheet, len(wardHeaders), headerStyle)
}

func writeSummarySheet(f *excelize.File, doc Document, headerStyle int) error {
	sup := doc.Supervisors.Summary
	ward := doc.Wards.Summary
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Source", doc.Source},
		{"Run ID", doc.ID},
		{"Total Supervisors", sup.TotalSupervisors},
		{"Total Transactions", sup.TotalTransactions},
		{"Date Range", sup.DateRange.String()},
		{"Most Active Supervisor", sup.MostActiveLabel()},
		{"Overall Total Amount", sup.OverallTotalAmount.InexactFloat64()},
		{"Wards With Data", ward.WardsWithData},
		{"Ward Total Slips", ward.TotalSlips},
		{"Ward Total Amount", ward.TotalAmount.InexactFloat64()},
		{"Missing Ward Count", ward.MissingCount},
		{"Missing Wards", strings.Join(ward.Missing, ", ")},
		{"Lines Read", doc.Stats.Lines},
		{"Rows Skipped", doc.Stats.Skipped},
		{"Rows Filtered", doc.Stats.Filtered},
	}
	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	return finishSheet(f, SummarySheet, 2, headerStyle)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// finishSheet bolds the header row and widens the used columns.
func finishSheet(f *excelize.File, sheet string, columns, headerStyle int) error {
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
