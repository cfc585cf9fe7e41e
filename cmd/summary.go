// =============================================================================
// Slip Report - Terminal Summary
// =============================================================================
//
// This file renders one analyzed file for the terminal: the summary cards of
// both reports followed by the leading rows of the supervisor table.
//
// The table is capped at maxTableRows; the exported reports carry every row.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ginjaninja78/slip-report/internal/analyzer"
	"github.com/ginjaninja78/slip-report/internal/report"
)

// Terminal summary styles.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d")).Width(22)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e67e22"))
)

// maxTableRows caps the supervisor table; the exports carry every row.
const maxTableRows = 20

// renderResult prints the summary cards and the leading supervisor rows of
// one analyzed file.
func renderResult(w io.Writer, res *analyzer.Result) {
	sup := res.Supervisors.Summary
	ward := res.Wards.Summary

	var b strings.Builder
	b.WriteString(titleStyle.Render(filepath.Base(res.Source)))
	b.WriteString("\n")

	card := func(label, value string) {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
		b.WriteString("\n")
	}
	card("Total Supervisors", strconv.Itoa(sup.TotalSupervisors))
	card("Total Transactions", strconv.Itoa(sup.TotalTransactions))
	card("Date Range", orDash(sup.DateRange.String()))
	card("Most Active", orDash(sup.MostActiveLabel()))
	card("Total Amount", sup.OverallTotalAmount.StringFixed(2))
	card("Wards With Data", fmt.Sprintf("%d / %d", ward.WardsWithData, len(res.Wards.Entries)))
	card("Skipped Rows", strconv.Itoa(res.Stats.Skipped))
	if res.Stats.Filtered > 0 {
		card("Filtered Rows", strconv.Itoa(res.Stats.Filtered))
	}
	if len(res.Absent) > 0 {
		b.WriteString(warnStyle.Render("Absent optional columns: " + strings.Join(res.Absent, ", ")))
		b.WriteString("\n")
	}

	if len(res.Supervisors.Entries) > 0 {
		b.WriteString(supervisorTable(res.Supervisors.Entries))
		b.WriteString("\n")
	}

	fmt.Fprintln(w, b.String())
}

func supervisorTable(entries []report.SupervisorEntry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Supervisor", "ID", "First Slip", "Last Slip", "Slips", "Hours", "Wards", "Amount").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i, e := range entries {
		if i == maxTableRows {
			t.Row(fmt.Sprintf("… %d more", len(entries)-maxTableRows), "", "", "", "", "", "", "")
			break
		}
		t.Row(
			e.Name,
			e.ID,
			strings.TrimSpace(e.FirstDate+" "+e.FirstTime),
			strings.TrimSpace(e.LastDate+" "+e.LastTime),
			strconv.Itoa(e.Count),
			strconv.FormatFloat(e.WorkingHours, 'f', 2, 64),
			strconv.Itoa(len(e.Wards)),
			e.TotalAmount.StringFixed(2),
		)
	}
	return t.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
