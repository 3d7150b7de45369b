package sheet

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"logonlog/internal/record"
)

var zone = time.FixedZone("AEST", 10*60*60)

func logon(user string, at time.Time) record.Logon {
	return record.Logon{
		ComputerName:  "LAB-PC-07",
		Username:      user,
		UserOU:        "Staff",
		FullOU:        "OU=Computers_Library",
		WorkstationOU: "Library",
		Time:          at,
		Period:        "Period 1",
		Description:   "Library kiosk",
		OSVersion:     "23H2",
		OSName:        "Windows 11 Education",
		Make:          "LENOVO",
		Model:         "ThinkCentre M70q",
		UUID:          "4C4C4544-0042-3510-8051-B7C04F4B3332",
		SerialNumber:  "PF3ABCDE",
	}
}

// readPart returns one file from the xlsx package at path.
func readPart(t *testing.T, path, name string) []byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, zf := range zr.File {
		if zf.Name != name {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return data
	}
	t.Fatalf("%s has no part %s", path, name)
	return nil
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.xlsx"), record.Workstation, zone)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "unrelated"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := Read(path, record.Workstation, zone)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))

	_, err := Read(path, record.Workstation, zone)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, schema := range record.Schemas {
		t.Run(schema.Name(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "logs", schema.Name()+Ext)
			want := logon("Jane Citizen", time.Date(2024, 1, 1, 8, 0, 0, 0, zone))
			want.ComputerName = "PC-" + schema.Name()

			require.NoError(t, Write(path, schema, []record.Logon{want}, zone))
			got, err := Read(path, schema, zone)
			require.NoError(t, err)
			require.Len(t, got, 1)

			// Only the projected fields survive a trip through one schema.
			project := func(l record.Logon) []any { return schema.ToRow(l, zone) }
			if diff := cmp.Diff(project(want), project(got[0])); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, want.Time.Equal(got[0].Time))
		})
	}
}

func TestRoundTripDropsSubSecond(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.xlsx")
	at := time.Date(2024, 5, 6, 14, 30, 15, 750_000_000, zone)
	require.NoError(t, Write(path, record.Workstation, []record.Logon{logon("a", at)}, zone))

	got, err := Read(path, record.Workstation, zone)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, at.Truncate(time.Second), got[0].Time)
}

func TestRoundTripOtherZoneInstant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.xlsx")
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, zone)
	require.NoError(t, Write(path, record.Workstation, []record.Logon{logon("a", at.UTC())}, zone))

	got, err := Read(path, record.Workstation, zone)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, at.Equal(got[0].Time), "want %s got %s", at, got[0].Time)
}

func TestWriteEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Write(path, record.User, nil, zone))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, record.User.Columns(), rows[0])

	tables, err := f.GetTables(SheetName)
	require.NoError(t, err)
	assert.Empty(t, tables)

	got, err := Read(path, record.User, zone)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.xlsx")
	records := []record.Logon{
		logon("Bob", time.Date(2024, 1, 1, 9, 0, 0, 0, zone)),
		logon("Alexandra Longname", time.Date(2024, 1, 1, 8, 0, 0, 0, zone)),
	}
	require.NoError(t, Write(path, record.Workstation, records, zone))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	// Header is bold.
	styleID, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	// Timestamp cells hold numbers carrying the date format.
	raw, err := f.GetCellValue(SheetName, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	serial, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	assert.InDelta(t, 45292.375, serial, 1e-9)

	styleID, err = f.GetCellStyle(SheetName, "C2")
	require.NoError(t, err)
	style, err = f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, DateFormat, *style.CustomNumFmt)

	// Username column fits the longest value plus padding.
	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Alexandra Longname")+2), width)

	tables, err := f.GetTables(SheetName)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "A1:M3", tables[0].Range)
	assert.Equal(t, TableStyle, tables[0].StyleName)

	// The table carries the filter over the same rectangle; the sheet has
	// no second one.
	part := readPart(t, path, "xl/tables/table1.xml")
	var table struct {
		Ref        string `xml:"ref,attr"`
		AutoFilter *struct {
			Ref string `xml:"ref,attr"`
		} `xml:"autoFilter"`
	}
	require.NoError(t, xml.Unmarshal(part, &table))
	assert.Equal(t, "A1:M3", table.Ref)
	require.NotNil(t, table.AutoFilter)
	assert.Equal(t, table.Ref, table.AutoFilter.Ref)
	assert.NotContains(t, string(readPart(t, path, "xl/worksheets/sheet1.xml")), "<autoFilter")

	panes, err := f.GetPanes(SheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.xlsx")
	a := logon("a", time.Date(2024, 1, 1, 8, 0, 0, 0, zone))
	b := logon("b", time.Date(2024, 1, 1, 9, 0, 0, 0, zone))

	require.NoError(t, Write(path, record.Workstation, []record.Logon{a, b}, zone))
	require.NoError(t, Write(path, record.Workstation, []record.Logon{b}, zone))

	got, err := Read(path, record.Workstation, zone)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Username)
}

func TestWriteCreatesOnlyOneDirectoryLevel(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Write(filepath.Join(root, "day", "w.xlsx"), record.Workstation, nil, zone))
	require.NoError(t, Write(filepath.Join(root, "day", "w2.xlsx"), record.Workstation, nil, zone))

	err := Write(filepath.Join(root, "missing", "day", "w.xlsx"), record.Workstation, nil, zone)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadDropsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.xlsx")
	good := logon("good", time.Date(2024, 1, 1, 8, 0, 0, 0, zone))
	require.NoError(t, Write(path, record.Workstation, []record.Logon{good}, zone))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	// A truncated row: two cells and no timestamp.
	require.NoError(t, f.SetCellStr(SheetName, "A3", "partial"))
	require.NoError(t, f.SetCellStr(SheetName, "B3", "Staff"))
	// A full-width row whose timestamp is text.
	for c, h := range record.Workstation.Columns() {
		cell, _ := excelize.CoordinatesToCellName(c+1, 4)
		require.NoError(t, f.SetCellStr(SheetName, cell, h))
	}
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	got, err := Read(path, record.Workstation, zone)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Username)
}

func TestReadNarrowSheetDiscardsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrow.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetName))
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &[]any{"Username", "UserOU", "DateTime"}))
	require.NoError(t, f.SetSheetRow(SheetName, "A2", &[]any{"bob", "Staff", 45292.5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := Read(path, record.Workstation, zone)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadKeepsTrailingEmptyTextCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trailing.xlsx")
	full := logon("full", time.Date(2024, 1, 1, 9, 0, 0, 0, zone))
	blank := logon("blank", time.Date(2024, 1, 1, 8, 0, 0, 0, zone))
	blank.SerialNumber = ""
	require.NoError(t, Write(path, record.Workstation, []record.Logon{full, blank}, zone))

	got, err := Read(path, record.Workstation, zone)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "", got[1].SerialNumber)
}

func TestWidths(t *testing.T) {
	// Header "Period" has length 6; values of length 3, 10 and 1.
	var records []record.Logon
	for _, p := range []string{"abc", "abcdefghij", "a"} {
		r := logon("u", time.Date(2024, 1, 1, 8, 0, 0, 0, zone))
		r.Period = p
		records = append(records, r)
	}

	widths := Widths(record.Workstation, records)
	periodCol := -1
	for k, col := range record.Workstation.TextColumns() {
		if record.Workstation.Columns()[col] == "Period" {
			periodCol = k
		}
	}
	require.GreaterOrEqual(t, periodCol, 0)
	assert.Equal(t, 12, widths[periodCol])

	// With no records every width is header plus padding.
	for k, col := range record.Workstation.TextColumns() {
		assert.Equal(t, len(record.Workstation.Columns()[col])+2, Widths(record.Workstation, nil)[k])
	}
}
