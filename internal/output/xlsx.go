package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported companies.
const SheetName = "Компании"

// WriteXLSX writes records as a single worksheet workbook with a bold,
// frozen header row.
func WriteXLSX(w io.Writer, records []Record, withE164 bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := Columns(withE164)
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, i+2, r.Row(withE164)); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetColWidth(SheetName, "A", last[:len(last)-1], 32); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// XLSXBytes renders records as a workbook.
func XLSXBytes(records []Record, withE164 bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, records, withE164); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
