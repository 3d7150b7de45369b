package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind is the cell type of a column.
type Kind int

const (
	// Text columns hold plain strings.
	Text Kind = iota
	// Timestamp columns hold a date serial.
	Timestamp
)

// Column is one header label bound to a field of Logon.
type Column struct {
	Header string
	Kind   Kind
	field  func(*Logon) *string
}

func text(header string, field func(*Logon) *string) Column {
	return Column{Header: header, Kind: Text, field: field}
}

func timestamp(header string) Column {
	return Column{Header: header, Kind: Timestamp}
}

// Schema is the fixed, ordered column list of one log kind. Column position
// is the only link between a Logon field and its place in a document.
type Schema struct {
	name    string
	columns []Column
	tsIndex int
}

func newSchema(name string, columns ...Column) Schema {
	tsIndex := -1
	for i, c := range columns {
		if c.Kind != Timestamp {
			continue
		}
		if tsIndex >= 0 {
			panic(fmt.Sprintf("record: schema %s declares more than one timestamp column", name))
		}
		tsIndex = i
	}
	if tsIndex < 0 {
		panic(fmt.Sprintf("record: schema %s has no timestamp column", name))
	}
	return Schema{name: name, columns: columns, tsIndex: tsIndex}
}

var (
	// Workstation is the per-computer log: who logged on to this machine.
	Workstation = newSchema("workstation",
		text("Username", func(l *Logon) *string { return &l.Username }),
		text("UserOU", func(l *Logon) *string { return &l.UserOU }),
		timestamp("DateTime"),
		text("Period", func(l *Logon) *string { return &l.Period }),
		text("Description", func(l *Logon) *string { return &l.Description }),
		text("WS_OU", func(l *Logon) *string { return &l.WorkstationOU }),
		text("OSVersion", func(l *Logon) *string { return &l.OSVersion }),
		text("Model", func(l *Logon) *string { return &l.Model }),
		text("OS", func(l *Logon) *string { return &l.OSName }),
		text("Full_OU", func(l *Logon) *string { return &l.FullOU }),
		text("Make", func(l *Logon) *string { return &l.Make }),
		text("UUID", func(l *Logon) *string { return &l.UUID }),
		text("Serial_Number", func(l *Logon) *string { return &l.SerialNumber }),
	)

	// User is the per-user log: which machine a user logged on to.
	User = newSchema("user",
		text("UserOU", func(l *Logon) *string { return &l.UserOU }),
		text("ComputerName", func(l *Logon) *string { return &l.ComputerName }),
		timestamp("DateTime"),
		text("Period", func(l *Logon) *string { return &l.Period }),
		text("Description", func(l *Logon) *string { return &l.Description }),
		text("WS_OU", func(l *Logon) *string { return &l.WorkstationOU }),
		text("OSVersion", func(l *Logon) *string { return &l.OSVersion }),
		text("Model", func(l *Logon) *string { return &l.Model }),
		text("OS", func(l *Logon) *string { return &l.OSName }),
		text("Full_OU", func(l *Logon) *string { return &l.FullOU }),
		text("Make", func(l *Logon) *string { return &l.Make }),
		text("UUID", func(l *Logon) *string { return &l.UUID }),
		text("Serial_Number", func(l *Logon) *string { return &l.SerialNumber }),
	)
)

// Schemas lists every known log kind.
var Schemas = []Schema{Workstation, User}

// ByName returns the schema for a log kind name such as "workstation".
func ByName(name string) (Schema, bool) {
	for _, s := range Schemas {
		if strings.EqualFold(s.name, name) {
			return s, true
		}
	}
	return Schema{}, false
}

// Name returns the log kind, used in document file names.
func (s Schema) Name() string {
	return s.name
}

// Columns returns the header labels in column order.
func (s Schema) Columns() []string {
	headers := make([]string, len(s.columns))
	for i, c := range s.columns {
		headers[i] = c.Header
	}
	return headers
}

// Len returns the number of cells a row of this schema carries.
func (s Schema) Len() int {
	return len(s.columns)
}

// TimestampIndex returns the zero-based column holding the date serial.
func (s Schema) TimestampIndex() int {
	return s.tsIndex
}

// ToRow renders r as ordered cells. Text cells are strings; the timestamp
// cell is a Serial of r's wall clock in loc so it can be stored as a number.
func (s Schema) ToRow(r Logon, loc *time.Location) []any {
	row := make([]any, len(s.columns))
	for i, c := range s.columns {
		if c.Kind == Timestamp {
			row[i] = ToSerial(r.Time, loc)
			continue
		}
		row[i] = *c.field(&r)
	}
	return row
}

// FromRow parses raw cell values into a Logon. It reports false when the
// row is too short or the timestamp cell is not a number; such rows are
// meant to be skipped by the caller.
func (s Schema) FromRow(cells []string, loc *time.Location) (Logon, bool) {
	if len(cells) < len(s.columns) {
		return Logon{}, false
	}

	serial, err := strconv.ParseFloat(strings.TrimSpace(cells[s.tsIndex]), 64)
	if err != nil {
		return Logon{}, false
	}
	ts, ok := FromSerial(Serial(serial), loc)
	if !ok {
		return Logon{}, false
	}

	r := Logon{Time: ts}
	for i, c := range s.columns {
		if c.Kind == Text {
			*c.field(&r) = cells[i]
		}
	}
	return r, true
}

// Timestamp returns the ordering key of r.
func (s Schema) Timestamp(r Logon) time.Time {
	return r.Time
}

// DisplayWidths returns, for each text column in order, the number of
// characters needed to print r's value. The timestamp column is skipped.
func (s Schema) DisplayWidths(r Logon) []int {
	widths := make([]int, 0, len(s.columns)-1)
	for _, c := range s.columns {
		if c.Kind == Text {
			widths = append(widths, utf8.RuneCountInString(*c.field(&r)))
		}
	}
	return widths
}

// TextColumns returns the zero-based positions of the text columns, aligned
// with the slice returned by DisplayWidths.
func (s Schema) TextColumns() []int {
	idx := make([]int, 0, len(s.columns)-1)
	for i, c := range s.columns {
		if c.Kind == Text {
			idx = append(idx, i)
		}
	}
	return idx
}
