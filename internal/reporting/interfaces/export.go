package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	reporting "maintenance-cloud/internal/reporting/domain"
)

// BuildRiskPDF renders the risk table as a PDF report.
func BuildRiskPDF(tbl reporting.RiskTable, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Predicted Failure Risks")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generated.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("High risk threshold: %.2f", tbl.Threshold))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Devices scored: %d (showing %d)", tbl.Total, len(tbl.Rows)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(28, 6, "Device", "1", 0, "C", false, 0, "")
	pdf.CellFormat(32, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Location", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Prob", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Priority", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Risk", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range tbl.Rows {
		pdf.CellFormat(28, 6, row.DeviceID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(32, 6, row.DeviceType, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, row.Location, "1", 0, "L", false, 0, "")
		pdf.CellFormat(24, 6, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%.3f", row.PredProb), "1", 0, "R", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%.3f", row.Priority), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, string(row.RiskLevel), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRiskXLSX renders the risk table and its distribution as a workbook.
func BuildRiskXLSX(tbl reporting.RiskTable, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	risksSheet := "risks"
	distributionSheet := "distribution"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(risksSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(distributionSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Predicted Failure Risks")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", generated.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Threshold")
	_ = f.SetCellValue(summarySheet, "B4", tbl.Threshold)
	_ = f.SetCellValue(summarySheet, "A5", "Devices scored")
	_ = f.SetCellValue(summarySheet, "B5", tbl.Total)
	_ = f.SetCellValue(summarySheet, "A6", "Rows listed")
	_ = f.SetCellValue(summarySheet, "B6", len(tbl.Rows))

	header := []any{"DeviceID", "DeviceType", "Location", "Date", "pred_prob", "priority", "RiskLevel"}
	if err := f.SetSheetRow(risksSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range tbl.Rows {
		values := []any{row.DeviceID, row.DeviceType, row.Location, row.Date, row.PredProb, row.Priority, string(row.RiskLevel)}
		if err := f.SetSheetRow(risksSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(distributionSheet, "A1", "Lower")
	_ = f.SetCellValue(distributionSheet, "B1", "Upper")
	_ = f.SetCellValue(distributionSheet, "C1", "Count")
	for i, bin := range tbl.Distribution.Bins {
		row := i + 2
		_ = f.SetCellValue(distributionSheet, fmt.Sprintf("A%d", row), bin.Lower)
		_ = f.SetCellValue(distributionSheet, fmt.Sprintf("B%d", row), bin.Upper)
		_ = f.SetCellValue(distributionSheet, fmt.Sprintf("C%d", row), bin.Count)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
