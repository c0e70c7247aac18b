package export

import (
	"bytes"
	"fmt"
	"time"

	"chargehub-api/internal/models"

	"github.com/xuri/excelize/v2"
)

const reportsSheet = "reports"

// BuildReportsXLSX renders the open malfunction reports as a single-sheet workbook.
func BuildReportsXLSX(reports []models.MalfunctionReport, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportsSheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	_ = f.SetCellValue(reportsSheet, "A1", "Open Malfunction Reports")
	_ = f.SetCellValue(reportsSheet, "A2", "Generated")
	_ = f.SetCellValue(reportsSheet, "B2", generatedAt.UTC().Format(time.RFC3339))

	headers := []string{"Station ID", "Reason", "Reported At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(reportsSheet, cell, h)
	}

	for i, r := range reports {
		row := i + 5
		_ = f.SetCellValue(reportsSheet, fmt.Sprintf("A%d", row), r.StationID)
		_ = f.SetCellValue(reportsSheet, fmt.Sprintf("B%d", row), r.Reason)
		if !r.ReportedAt.IsZero() {
			_ = f.SetCellValue(reportsSheet, fmt.Sprintf("C%d", row), r.ReportedAt.UTC().Format(time.RFC3339))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
