package exporter

import (
	"bytes"
	"io"
	"log/slog"

	apperrors "consolidator/internal/errors"
	"consolidator/pkg/contracts/domain"
)

// Options configures the exporter
type Options struct {
	SheetName string
	// BaseName is the download file name without extension
	BaseName string
	CSVBOM   bool
}

// DefaultOptions returns default export options
func DefaultOptions() Options {
	return Options{
		SheetName: "Sheet1",
		BaseName:  "acciones_consolidadas",
		CSVBOM:    true,
	}
}

// Exporter dispatches a table to the writer of the requested format
type Exporter struct {
	opts   Options
	excel  *ExcelWriter
	csv    *CSVWriter
	logger *slog.Logger
}

// New creates an exporter
func New(opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseName == "" {
		opts.BaseName = DefaultOptions().BaseName
	}
	return &Exporter{
		opts:   opts,
		excel:  NewExcelWriter(opts.SheetName),
		csv:    NewCSVWriter(opts.CSVBOM),
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Export writes the table to out in the given format
func (e *Exporter) Export(out io.Writer, table *domain.ConsolidatedTable, format Format) error {
	var err error
	switch format {
	case FormatCSV:
		err = e.csv.Write(out, table)
	default:
		err = e.excel.Write(out, table)
	}
	if err != nil {
		return apperrors.NewExportError("failed to export "+string(format), err)
	}

	e.logger.Debug("table exported",
		slog.String("format", string(format)),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)))
	return nil
}

// Bytes renders the table in memory
func (e *Exporter) Bytes(table *domain.ConsolidatedTable, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf, table, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the download name for the format
func (e *Exporter) FileName(format Format) string {
	return e.opts.BaseName + format.Extension()
}
