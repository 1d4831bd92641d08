package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	apperrors "consolidator/internal/errors"
	"consolidator/pkg/contracts/domain"
)

// Normalizer reads one uploaded CSV into a StockSeries
type Normalizer struct {
	opts   NormalizerOptions
	logger *slog.Logger
}

// NewNormalizer validates the options and creates a normalizer
func NewNormalizer(opts NormalizerOptions, logger *slog.Logger) (*Normalizer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	primary, err := CanonicalEncoding(opts.PrimaryEncoding)
	if err != nil {
		return nil, apperrors.NewConfigError("primary encoding", err)
	}
	opts.PrimaryEncoding = primary

	if opts.FallbackEncoding != "" {
		fallback, err := CanonicalEncoding(opts.FallbackEncoding)
		if err != nil {
			return nil, apperrors.NewConfigError("fallback encoding", err)
		}
		opts.FallbackEncoding = fallback
	}

	policy, err := ParseDuplicatePolicy(string(opts.Duplicates))
	if err != nil {
		return nil, apperrors.NewConfigError("duplicate policy", err)
	}
	opts.Duplicates = policy

	return &Normalizer{
		opts:   opts,
		logger: logger.With(slog.String("component", "normalizer")),
	}, nil
}

// StockName is the file name without directories and without its last
// extension, e.g. "data/AAA.csv" gives "AAA".
func StockName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}

// Normalize decodes the upload and returns its cleaned, date-ordered series.
// Rows with a missing date or price are dropped and repeated dates are
// resolved with the configured duplicate policy.
func (n *Normalizer) Normalize(upload domain.Upload) (*domain.StockSeries, error) {
	name := StockName(upload.Name)
	if name == "" {
		return nil, apperrors.NewFormatError(upload.Name, "file name does not give a stock name", nil)
	}

	text, used, err := DecodeWithFallback(upload.Content, n.opts.PrimaryEncoding, n.opts.FallbackEncoding)
	if err != nil {
		return nil, apperrors.NewFormatError(upload.Name, "cannot decode file", err)
	}
	if used != n.opts.PrimaryEncoding {
		n.logger.Debug("decoded with fallback encoding",
			slog.String("file", upload.Name),
			slog.String("encoding", used))
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewFormatError(upload.Name, "file is empty", nil)
	}
	if err != nil {
		return nil, csvFormatError(upload.Name, err)
	}
	if len(header) < 2 {
		return nil, apperrors.NewFormatError(upload.Name,
			fmt.Sprintf("expected at least two columns (date, price), found %d", len(header)), nil)
	}

	series := &domain.StockSeries{Name: name, Encoding: used}
	seen := make(map[time.Time]int)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvFormatError(upload.Name, err)
		}
		series.RowsRead++

		if len(record) < 2 {
			series.Dropped++
			continue
		}
		line, _ := reader.FieldPos(0)

		date, ok, err := ParseDate(record[0])
		if err != nil {
			return nil, lineFormatError(upload.Name, line, err)
		}
		if !ok {
			series.Dropped++
			continue
		}

		price, ok, err := ParsePrice(record[1])
		if err != nil {
			return nil, lineFormatError(upload.Name, line, err)
		}
		if !ok {
			series.Dropped++
			continue
		}

		if idx, dup := seen[date]; dup {
			series.Duplicates++
			if n.opts.Duplicates == KeepLast {
				series.Observations[idx].Price = price
			}
			continue
		}
		seen[date] = len(series.Observations)
		series.Observations = append(series.Observations, domain.Observation{Date: date, Price: price})
	}

	sort.SliceStable(series.Observations, func(i, j int) bool {
		return series.Observations[i].Date.Before(series.Observations[j].Date)
	})

	n.logger.Debug("file normalized",
		slog.String("file", upload.Name),
		slog.String("stock", name),
		slog.String("encoding", used),
		slog.Int("rows_read", series.RowsRead),
		slog.Int("rows_kept", series.Len()),
		slog.Int("rows_dropped", series.Dropped),
		slog.Int("duplicates", series.Duplicates))

	return series, nil
}

// detectDelimiter picks ";" when the header line splits into more fields
// on it than on ",".
func detectDelimiter(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

func csvFormatError(file string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return apperrors.NewFormatError(file, fmt.Sprintf("malformed CSV at line %d", parseErr.Line), parseErr.Err).
			WithContext("line", parseErr.Line)
	}
	return apperrors.NewFormatError(file, "cannot read CSV", err)
}

func lineFormatError(file string, line int, err error) error {
	return apperrors.NewFormatError(file, fmt.Sprintf("line %d", line), err).
		WithContext("line", line)
}
