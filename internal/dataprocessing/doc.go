// Package dataprocessing turns uploaded per-stock CSV files into one
// calendar-aligned table.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Normalizer: decodes a CSV upload and extracts a clean StockSeries
// 2. Consolidator: left joins every series onto a daily calendar
// 3. Processors: weekend flag, forward fill and column ordering
//
// # Usage
//
//	n, err := dataprocessing.NewNormalizer(dataprocessing.DefaultNormalizerOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	series, err := n.Normalize(domain.Upload{Name: "AAA.csv", Content: data})
//
//	rng, _ := calendar.Build("2024-01-01", "2024-01-05", 0)
//	table, stats, err := dataprocessing.Consolidate(rng, []*domain.StockSeries{series})
//
// # Data Flow
//
//	CSV bytes → Normalizer → StockSeries → Join → Weekend flag → Forward fill → Sort → ConsolidatedTable
//
// # Input Format
//
// Only the first two columns are read: a day-first date and a price written
// with "." as thousands separator and "," as decimal separator. Files are
// decoded as UTF-8 and fall back to Windows-1252 when the bytes are not
// valid UTF-8.
//
// # Error Handling
//
// Failures specific to one file are returned as FORMAT errors from
// internal/errors carrying the file name and, where known, the line number.
// Join failures such as duplicate stock names are VALIDATION errors.
package dataprocessing
