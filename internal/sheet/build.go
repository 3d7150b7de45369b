package sheet

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"logonlog/internal/record"
)

// build lays out the workbook: bold header, date-styled timestamp column,
// sized text columns, a table over the data when there is any, and a
// frozen header row.
func build(schema record.Schema, records []record.Logon, loc *time.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := layout(f, schema, records, loc); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func layout(f *excelize.File, schema record.Schema, records []record.Logon, loc *time.Location) error {
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dateFmt := DateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	tsCol, err := excelize.ColumnNumberToName(schema.TimestampIndex() + 1)
	if err != nil {
		return err
	}
	if err := f.SetColStyle(SheetName, tsCol, dateStyle); err != nil {
		return fmt.Errorf("failed to style date column: %w", err)
	}

	// Header
	for c, h := range schema.Columns() {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header %s: %w", h, err)
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(schema.Len(), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	// Data rows
	for i, r := range records {
		for c, v := range schema.ToRow(r, loc) {
			cell, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return err
			}
			if err := writeCell(f, cell, v, dateStyle); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	widths := Widths(schema, records)
	for k, col := range schema.TextColumns() {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, float64(min(widths[k], excelize.MaxColumnWidth))); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	// An empty table region is not valid, so an empty log is header only.
	if len(records) > 0 {
		lastCell, err := excelize.CoordinatesToCellName(schema.Len(), len(records)+1)
		if err != nil {
			return err
		}
		stripes := true
		if err := f.AddTable(SheetName, &excelize.Table{
			Range:          "A1:" + lastCell,
			Name:           tableName,
			StyleName:      TableStyle,
			ShowRowStripes: &stripes,
		}); err != nil {
			return fmt.Errorf("failed to add table: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	return nil
}

func writeCell(f *excelize.File, cell string, v any, dateStyle int) error {
	switch v := v.(type) {
	case string:
		return f.SetCellStr(SheetName, cell, v)
	case record.Serial:
		if err := f.SetCellFloat(SheetName, cell, float64(v), -1, 64); err != nil {
			return err
		}
		return f.SetCellStyle(SheetName, cell, cell, dateStyle)
	default:
		return fmt.Errorf("unsupported cell type %T", v)
	}
}

// Widths returns the print width of each text column, aligned with
// schema.TextColumns: the longer of the header and every record's value,
// plus padding.
func Widths(schema record.Schema, records []record.Logon) []int {
	headers := schema.Columns()
	cols := schema.TextColumns()
	widths := make([]int, len(cols))
	for k, col := range cols {
		widths[k] = len([]rune(headers[col]))
	}
	for _, r := range records {
		for k, w := range schema.DisplayWidths(r) {
			widths[k] = max(widths[k], w)
		}
	}
	for k := range widths {
		widths[k] += widthPadding
	}
	return widths
}
