package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateColumn is the name of the calendar index column.
	DateColumn = "Fecha"

	// WeekendColumn is the name of the Saturday/Sunday flag column.
	WeekendColumn = "Fin_de_semana"

	// DateLayout is the ISO calendar date layout used at every boundary.
	DateLayout = "2006-01-02"
)

// Upload is one CSV file as received from the user.
type Upload struct {
	Name    string `json:"name" validate:"required,filename"`
	Content []byte `json:"-"`
}

// Observation is a single dated closing price.
type Observation struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// StockSeries is a normalized per-file price series keyed by unique dates,
// ordered ascending.
type StockSeries struct {
	Name         string        `json:"name"`
	Observations []Observation `json:"observations"`

	// Encoding is the character set the file was decoded with.
	Encoding   string `json:"encoding"`
	RowsRead   int    `json:"rows_read"`
	Dropped    int    `json:"rows_dropped"`
	Duplicates int    `json:"duplicates"`
}

// Len returns the number of observations.
func (s *StockSeries) Len() int {
	return len(s.Observations)
}

// ColumnKind distinguishes price columns from the weekend flag.
type ColumnKind int

const (
	PriceColumn ColumnKind = iota
	FlagColumn
)

// Column is one aligned column of a ConsolidatedTable. Prices is set for
// PriceColumn, Flags for FlagColumn; both have one entry per table date.
type Column struct {
	Name   string
	Kind   ColumnKind
	Prices []decimal.NullDecimal
	Flags  []bool
}

// ConsolidatedTable is the calendar-indexed result of a consolidation.
type ConsolidatedTable struct {
	Dates   []time.Time
	Columns []Column
}

// Len returns the number of rows.
func (t *ConsolidatedTable) Len() int {
	return len(t.Dates)
}

// Column returns the column with the given name.
func (t *ConsolidatedTable) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the data column names in table order, without the
// date index.
func (t *ConsolidatedTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Preview is the first rows of a table rendered for display.
type Preview struct {
	Columns   []string     `json:"columns"`
	Rows      []PreviewRow `json:"rows"`
	TotalRows int          `json:"total_rows"`
}

// PreviewRow holds one preview line. Values are aligned with Preview.Columns;
// a missing price is an empty string.
type PreviewRow struct {
	Fecha  string   `json:"Fecha"`
	Values []string `json:"values"`
}

// FileStatus is the outcome of normalizing one upload.
type FileStatus string

const (
	FileStatusOK      FileStatus = "ok"
	FileStatusSkipped FileStatus = "skipped"
	FileStatusFailed  FileStatus = "failed"
)

// FileReport summarizes how one upload was read.
type FileReport struct {
	File       string     `json:"file"`
	Stock      string     `json:"stock,omitempty"`
	Status     FileStatus `json:"status"`
	Encoding   string     `json:"encoding,omitempty"`
	RowsRead   int        `json:"rows_read"`
	RowsKept   int        `json:"rows_kept"`
	Dropped    int        `json:"rows_dropped"`
	Duplicates int        `json:"duplicates"`
	Error      string     `json:"error,omitempty"`
}

// ConsolidationReport describes a finished consolidation.
type ConsolidationReport struct {
	Start       string       `json:"start"`
	End         string       `json:"end"`
	Days        int          `json:"days"`
	Stocks      []string     `json:"stocks"`
	Files       []FileReport `json:"files"`
	Skipped     []string     `json:"skipped,omitempty"`
	FilledCells int          `json:"filled_cells"`
	DurationMS  int64        `json:"duration_ms"`
}
