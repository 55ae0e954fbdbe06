package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DuesReport is a dues listing ready for export
type DuesReport struct {
	SchoolName string
	AsOf       time.Time
	Status     string
	Rows       []StudentDues
}

// TotalDue sums the amount due over all rows
func (r *DuesReport) TotalDue() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.Rows {
		total = total.Add(row.DueAmount)
	}
	return total
}

func (r *DuesReport) filename(ext string) string {
	return fmt.Sprintf("dues_report_%s.%s", r.AsOf.Format("2006-01-02"), ext)
}

var duesColumns = []string{
	"Roll No", "Student", "Class", "Guardian", "Status",
	"Expected", "Paid", "Unassigned", "Due", "Prepaid", "Paid %", "Overdue Months",
}

func duesRecord(row StudentDues) []string {
	return []string{
		row.RollNumber,
		row.FullName,
		row.ClassName,
		row.GuardianName,
		string(row.Status),
		row.TotalExpected.StringFixed(2),
		row.TotalPaid.StringFixed(2),
		row.UnassignedTotal.StringFixed(2),
		row.DueAmount.StringFixed(2),
		row.PrepaidAmount.StringFixed(2),
		strconv.FormatInt(row.Percentage, 10),
		strings.Join(row.OverduePeriods, " "),
	}
}

type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

func (s *ExportService) DuesCSV(ctx context.Context, report *DuesReport) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(duesColumns)
	for _, row := range report.Rows {
		_ = writer.Write(duesRecord(row))
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), report.filename("csv"), nil
}

func (s *ExportService) DuesXLSX(ctx context.Context, report *DuesReport) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Dues"
	_ = f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - Dues Report", report.SchoolName))
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("As of %s, status %s", report.AsOf.Format("2006-01-02"), report.Status))

	const headerRow = 4
	for i, title := range duesColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheet, cell, title)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(duesColumns), headerRow)
	_ = f.SetCellStyle(sheet, first, last, headerStyle)

	for r, row := range report.Rows {
		line := headerRow + 1 + r
		values := []interface{}{
			row.RollNumber,
			row.FullName,
			row.ClassName,
			row.GuardianName,
			string(row.Status),
			row.TotalExpected.InexactFloat64(),
			row.TotalPaid.InexactFloat64(),
			row.UnassignedTotal.InexactFloat64(),
			row.DueAmount.InexactFloat64(),
			row.PrepaidAmount.InexactFloat64(),
			row.Percentage,
			strings.Join(row.OverduePeriods, " "),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, line)
			_ = f.SetCellValue(sheet, cell, v)
		}
		from, _ := excelize.CoordinatesToCellName(6, line)
		to, _ := excelize.CoordinatesToCellName(10, line)
		_ = f.SetCellStyle(sheet, from, to, moneyStyle)
	}

	totalLine := headerRow + 1 + len(report.Rows)
	label, _ := excelize.CoordinatesToCellName(8, totalLine)
	total, _ := excelize.CoordinatesToCellName(9, totalLine)
	_ = f.SetCellValue(sheet, label, "Total due")
	_ = f.SetCellValue(sheet, total, report.TotalDue().InexactFloat64())
	_ = f.SetCellStyle(sheet, total, total, moneyStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), report.filename("xlsx"), nil
}

func (s *ExportService) DuesPDF(ctx context.Context, report *DuesReport) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("%s - Dues Report", report.SchoolName))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("As of %s, status %s, %d students", report.AsOf.Format("2006-01-02"), report.Status, len(report.Rows)))
	pdf.Ln(10)

	widths := []float64{20, 50, 20, 45, 20, 25, 25, 25, 25, 20}
	headers := []string{"Roll No", "Student", "Class", "Guardian", "Status", "Expected", "Paid", "Unassigned", "Due", "Paid %"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range report.Rows {
		cells := []string{
			row.RollNumber,
			row.FullName,
			row.ClassName,
			row.GuardianName,
			string(row.Status),
			row.TotalExpected.StringFixed(2),
			row.TotalPaid.StringFixed(2),
			row.UnassignedTotal.StringFixed(2),
			row.DueAmount.StringFixed(2),
			strconv.FormatInt(row.Percentage, 10) + "%",
		}
		for i, c := range cells {
			align := "L"
			if i >= 5 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 8, "Total due:")
	pdf.Cell(40, 8, report.TotalDue().StringFixed(2))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), report.filename("pdf"), nil
}
