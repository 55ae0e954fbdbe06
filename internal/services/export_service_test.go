package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDuesReport() *DuesReport {
	return &DuesReport{
		SchoolName: "Fintera School",
		AsOf:       day(2025, time.July, 15),
		Status:     "DUE",
		Rows: []StudentDues{
			{
				StudentID: 3, FullName: "Chandra Thapa", RollNumber: "5A-07", ClassName: "5A",
				Status:        reconciliation.BalanceDue,
				TotalExpected: decimal.NewFromInt(4000), TotalPaid: decimal.Zero,
				UnassignedTotal: decimal.Zero, DueAmount: decimal.NewFromInt(4000), PrepaidAmount: decimal.Zero,
				OverduePeriods: []string{"Baisakh", "Jestha", "Ashadh"},
			},
			{
				StudentID: 1, FullName: "Asha Karki", RollNumber: "5A-01", ClassName: "5A", GuardianName: "Ram Karki",
				Status:        reconciliation.BalanceDue,
				TotalExpected: decimal.NewFromInt(4000), TotalPaid: decimal.NewFromInt(1000),
				UnassignedTotal: decimal.Zero, DueAmount: decimal.NewFromInt(3000), PrepaidAmount: decimal.Zero,
				Percentage: 25, OverduePeriods: []string{"Jestha", "Ashadh"},
			},
		},
	}
}

func TestDuesReport_TotalDue(t *testing.T) {
	report := sampleDuesReport()
	assert.True(t, report.TotalDue().Equal(decimal.NewFromInt(7000)))

	empty := &DuesReport{}
	assert.True(t, empty.TotalDue().IsZero())
}

func TestExportService_DuesCSV(t *testing.T) {
	svc := NewExportService()

	data, filename, err := svc.DuesCSV(context.Background(), sampleDuesReport())
	require.NoError(t, err)
	assert.Equal(t, "dues_report_2025-07-15.csv", filename)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, duesColumns, records[0])
	assert.Equal(t, "Chandra Thapa", records[1][1])
	assert.Equal(t, "4000.00", records[1][8])
	assert.Equal(t, "Baisakh Jestha Ashadh", records[1][11])
	assert.Equal(t, "25", records[2][10])
}

func TestExportService_DuesXLSX(t *testing.T) {
	svc := NewExportService()

	data, filename, err := svc.DuesXLSX(context.Background(), sampleDuesReport())
	require.NoError(t, err)
	assert.Equal(t, "dues_report_2025-07-15.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Dues", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Fintera School - Dues Report", title)

	header, _ := f.GetCellValue("Dues", "B4")
	assert.Equal(t, "Student", header)
	first, _ := f.GetCellValue("Dues", "B5")
	assert.Equal(t, "Chandra Thapa", first)
	second, _ := f.GetCellValue("Dues", "B6")
	assert.Equal(t, "Asha Karki", second)

	label, _ := f.GetCellValue("Dues", "H7")
	assert.Equal(t, "Total due", label)
}

func TestExportService_DuesPDF(t *testing.T) {
	svc := NewExportService()

	data, filename, err := svc.DuesPDF(context.Background(), sampleDuesReport())
	require.NoError(t, err)
	assert.Equal(t, "dues_report_2025-07-15.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
