package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/slip-report/internal/aggregate"
	"github.com/ginjaninja78/slip-report/internal/report"
)

func sampleDocument() Document {
	return Document{
		ID:          "run-1",
		Source:      "slips.csv",
		GeneratedAt: time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		Supervisors: report.SupervisorReport{
			Entries: []report.SupervisorEntry{{
				Name: "Asha & Co", ID: "S1",
				FirstDate: "05/01/2024", FirstTime: "09:00",
				LastDate: "05/01/2024", LastTime: "17:30",
				Count: 3, WorkingHours: 8.5, WardList: "12, 13", SlipsPerWard: 1.5,
				Wards: []report.WardDetail{
					{Ward: "12", Count: 1, Amount: decimal.RequireFromString("150.5")},
					{Ward: "13", Count: 2, Amount: decimal.RequireFromString("49.5")},
				},
				TotalAmount: decimal.RequireFromString("200"),
			}},
			Summary: report.SupervisorSummary{
				TotalSupervisors: 1, TotalTransactions: 3,
				MostActive: "Asha & Co", MostActiveCount: 3,
				OverallTotalAmount: decimal.RequireFromString("200"),
			},
		},
		Wards: report.WardReport{
			Entries: []report.WardEntry{
				{Ward: "11", TotalAmount: decimal.Zero},
				{
					Ward: "12", HasData: true, TotalSlips: 1,
					TotalAmount:   decimal.RequireFromString("150.5"),
					Supervisors:   []string{"Asha & Co"},
					PropertyTypes: []report.PropertyTypeDetail{{PropertyType: "Residential", Count: 1}},
				},
			},
			Unlisted: []report.WardEntry{{
				Ward: "13", HasData: true, TotalSlips: 2,
				TotalAmount: decimal.RequireFromString("49.5"),
				Supervisors: []string{"Asha & Co"},
			}},
			Summary: report.WardSummary{
				WardsWithData: 1, TotalSlips: 3, TotalAmount: decimal.RequireFromString("200"),
				MissingCount: 1, Missing: []string{"11"},
			},
		},
		Stats: aggregate.Stats{Lines: 4, Records: 3, Skipped: 1},
	}
}

func TestArtifacts(t *testing.T) {
	for _, format := range Formats {
		arts, err := Artifacts(format)
		require.NoError(t, err, format)
		require.NotEmpty(t, arts)
		for _, a := range arts {
			assert.True(t, strings.HasPrefix(a.Ext, "."))
			var buf bytes.Buffer
			require.NoError(t, a.Write(&buf, sampleDocument()))
			assert.NotZero(t, buf.Len())
		}
	}

	csvArts, _ := Artifacts(FormatCSV)
	assert.Len(t, csvArts, 2)

	_, err := Artifacts("pdf")
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleDocument()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SupervisorSheet, WardSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(SupervisorSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Supervisor Name", rows[0][0])
	assert.Equal(t, "Asha & Co", rows[1][0])
	assert.Equal(t, "3", rows[1][6])

	wards, err := f.GetRows(WardSheet)
	require.NoError(t, err)
	require.Len(t, wards, 4)
	assert.Equal(t, []string{"11", noData}, wards[1])
	assert.Equal(t, "13", wards[3][0])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Most Active Supervisor", "Asha & Co (3 slips)"}, summary[6])
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, sampleDocument()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, "<name>Asha &amp; Co</name>")
	assert.Contains(t, out, `<ward id="11" hasData="false"/>`)
	assert.Contains(t, out, `<ward id="12" count="1" amount="150.50"/>`)

	var parsed struct {
		ID          string `xml:"id,attr"`
		Supervisors []struct {
			Name        string `xml:"name"`
			TotalAmount string `xml:"totalAmount"`
		} `xml:"supervisors>supervisor"`
		Missing []string `xml:"wardSummary>missing>ward"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "run-1", parsed.ID)
	require.Len(t, parsed.Supervisors, 1)
	assert.Equal(t, "Asha & Co", parsed.Supervisors[0].Name)
	assert.Equal(t, "200.00", parsed.Supervisors[0].TotalAmount)
	assert.Equal(t, []string{"11"}, parsed.Missing)
}

func TestWriteCSV(t *testing.T) {
	doc := sampleDocument()

	var sup bytes.Buffer
	require.NoError(t, WriteSupervisorsCSV(&sup, doc.Supervisors))
	rows, err := csv.NewReader(&sup).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, supervisorHeaders, rows[0])
	assert.Equal(t, "8.50", rows[1][7])
	assert.Equal(t, "200.00", rows[1][10])
	assert.Equal(t, "Ward: 12 | Slips: 1 | Amount: 150.50; Ward: 13 | Slips: 2 | Amount: 49.50", rows[1][11])

	var wards bytes.Buffer
	require.NoError(t, WriteWardsCSV(&wards, doc.Wards))
	rows, err = csv.NewReader(&wards).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"11", noData, "", "", ""}, rows[1])
	assert.Equal(t, "Residential: 1", rows[2][4])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleDocument()))

	var decoded struct {
		ID          string `json:"id"`
		Supervisors struct {
			Entries []struct {
				Name string `json:"name"`
			} `json:"entries"`
		} `json:"supervisors"`
		Stats struct {
			Skipped int `json:"skipped"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.ID)
	assert.Equal(t, "Asha & Co", decoded.Supervisors.Entries[0].Name)
	assert.Equal(t, 1, decoded.Stats.Skipped)
}
