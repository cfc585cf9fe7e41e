// =============================================================================
// Slip Report - CSV Exporter
// =============================================================================
//
// This file writes one CSV file per report. Column headers match the XLSX
// sheets so either export can feed the same downstream sheet.
//
// =============================================================================

package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ginjaninja78/slip-report/internal/report"
)

// WriteSupervisorsCSV writes the supervisor entries with a header row.
func WriteSupervisorsCSV(w io.Writer, rpt report.SupervisorReport) error {
	records := make([][]string, 0, len(rpt.Entries)+1)
	records = append(records, supervisorHeaders)
	for _, e := range rpt.Entries {
		records = append(records, supervisorRecord(e))
	}
	return writeCSV(w, records)
}

// WriteWardsCSV writes expected wards in order, then unlisted wards.
// Expected wards without slips carry a "No data" marker.
func WriteWardsCSV(w io.Writer, rpt report.WardReport) error {
	records := make([][]string, 0, len(rpt.Entries)+len(rpt.Unlisted)+1)
	records = append(records, wardHeaders)
	for _, e := range rpt.Entries {
		records = append(records, wardRecord(e))
	}
	for _, e := range rpt.Unlisted {
		records = append(records, wardRecord(e))
	}
	return writeCSV(w, records)
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
