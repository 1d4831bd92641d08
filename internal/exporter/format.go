package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"consolidator/pkg/contracts/domain"
)

// Format is an output file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat reads a format name; empty means xlsx.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatXLSX, "xls", "excel", "":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q, expected xlsx or csv", value)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".xlsx"
}

// formatPrice formats a price for text output; missing prices are empty
func formatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return ""
	}
	return p.Decimal.String()
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// cellText renders row i of col as text.
func cellText(col *domain.Column, i int) string {
	if col.Kind == domain.FlagColumn {
		return formatBool(col.Flags[i])
	}
	return formatPrice(col.Prices[i])
}

// header returns the header row with the date index first.
func header(table *domain.ConsolidatedTable) []string {
	return append([]string{domain.DateColumn}, table.ColumnNames()...)
}
