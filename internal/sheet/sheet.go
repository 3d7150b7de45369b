// Package sheet reads and writes log documents: single-sheet xlsx workbooks
// holding a header row followed by one row per logon record.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"

	"logonlog/internal/record"
)

const (
	// SheetName is the only sheet a log document carries.
	SheetName = "Logons"

	// Ext is the file extension of a log document.
	Ext = ".xlsx"

	// DateFormat is the display pattern of the timestamp column.
	DateFormat = "yyyy/mm/dd hh:mm AM/PM"

	// TableStyle is the visual style of the table region.
	TableStyle = "TableStyleMedium9"

	tableName = "LogonTable"

	// widthPadding is added to every data-driven column width.
	widthPadding = 2
)

var (
	// ErrOpen is returned when an existing document cannot be parsed.
	ErrOpen = errors.New("open log document")
	// ErrWrite is returned when the workbook cannot be built or saved.
	ErrWrite = errors.New("write log document")
)

// Read returns every record stored at path. A missing file or a workbook
// without the Logons sheet yields an empty list. Rows that do not parse are
// dropped. Timestamps are interpreted in loc.
func Read(path string, schema record.Schema, loc *time.Location) ([]record.Logon, error) {
	records, _, err := ReadCounted(path, schema, loc)
	return records, err
}

// ReadCounted is Read that also reports how many data rows were dropped.
func ReadCounted(path string, schema record.Schema, loc *time.Location) ([]record.Logon, int, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		return nil, 0, nil
	}

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}

	// GetRows trims trailing empty cells. A sheet is a rectangle, so pad
	// every row back out to the widest one before handing it to the schema.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	var records []record.Logon
	dropped := 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < width {
			row = append(row, make([]string, width-len(row))...)
		}
		r, ok := schema.FromRow(row, loc)
		if !ok {
			dropped++
			continue
		}
		records = append(records, r)
	}
	return records, dropped, nil
}

// Write renders records, in the given order, as a complete document and
// replaces whatever is at path. Timestamps are written as wall clocks in
// loc, the same zone Read interprets them in. The parent directory is
// created if missing (one level only).
func Write(path string, schema record.Schema, records []record.Logon, loc *time.Location) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	f, err := build(schema, records, loc)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrWrite, path, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrWrite, path, err)
	}

	_, statErr := os.Stat(path)

	if err := atomic.WriteFile(path, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	// atomic.WriteFile keeps the mode of a file it replaces but creates new
	// ones private.
	if statErr != nil {
		if err := os.Chmod(path, 0644); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", path, err)
		}
	}
	return nil
}

// ensureParent creates the directory holding path. Only the last level is
// created, so a missing grandparent is an error.
func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.Mkdir(dir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return nil
}
