package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := t.Title
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if sheet == "" {
		sheet = "Export"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("set sheet name: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}

	for i, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, sanitizeCell(header)); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return err
		}
	}

	rowNum := 2
	for _, row := range t.Rows {
		if err := writeRow(f, sheet, rowNum, row, number); err != nil {
			return err
		}
		rowNum++
	}
	if len(t.Totals) > 0 {
		if err := writeRow(f, sheet, rowNum, t.Totals, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, row []Cell, numberStyle int) error {
	for i, c := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if c.Numeric {
			if err := f.SetCellValue(sheet, cell, c.Number); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, numberStyle); err != nil {
				return err
			}
			continue
		}
		if err := f.SetCellValue(sheet, cell, sanitizeCell(c.Text)); err != nil {
			return err
		}
	}
	return nil
}

// sanitizeCell stops spreadsheet apps from evaluating text as a formula.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
