package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildWorkbook renders one sheet with a bold header row and returns the xlsx
// bytes.
func BuildWorkbook(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerCells := make([]any, len(headers))
	for i, header := range headers {
		headerCells[i] = header
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", endCell, style)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buffer.Bytes(), nil
}
