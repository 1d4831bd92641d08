package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"consolidator/pkg/contracts/domain"
)

const (
	dateNumFmt      = "yyyy-mm-dd"
	dateColWidth    = 12
	defaultColWidth = 14
)

// ExcelWriter writes a table as a single-sheet workbook
type ExcelWriter struct {
	SheetName string
}

// NewExcelWriter creates a writer for the named sheet
func NewExcelWriter(sheetName string) *ExcelWriter {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &ExcelWriter{SheetName: sheetName}
}

// Write renders the table and writes the workbook to out. Column A holds
// the dates, then one column per table column in order. Missing prices
// are left as empty cells.
func (w *ExcelWriter) Write(out io.Writer, table *domain.ConsolidatedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if current := f.GetSheetName(0); current != w.SheetName {
		if err := f.SetSheetName(current, w.SheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	numFmt := dateNumFmt
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(w.SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	if err := sw.SetColWidth(1, 1, dateColWidth); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if len(table.Columns) > 0 {
		if err := sw.SetColWidth(2, len(table.Columns)+1, defaultColWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	names := header(table)
	headerRow := make([]interface{}, len(names))
	for i, name := range names {
		headerRow[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]interface{}, len(table.Columns)+1)
	for i, d := range table.Dates {
		row[0] = excelize.Cell{StyleID: dateStyle, Value: d}
		for j := range table.Columns {
			row[j+1] = cellValue(&table.Columns[j], i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue returns the cell content for row i; nil leaves the cell empty.
func cellValue(col *domain.Column, i int) interface{} {
	if col.Kind == domain.FlagColumn {
		return col.Flags[i]
	}
	p := col.Prices[i]
	if !p.Valid {
		return nil
	}
	v, _ := p.Decimal.Float64()
	return v
}
