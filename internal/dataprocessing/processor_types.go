package dataprocessing

import (
	"fmt"
	"strings"

	"consolidator/pkg/contracts/domain"
)

// Processor defines a finalization step applied to a joined table
type Processor interface {
	// Process transforms the table in place
	Process(table *domain.ConsolidatedTable) error
}

// DuplicatePolicy selects which row wins when a file repeats a date
type DuplicatePolicy string

const (
	KeepFirst DuplicatePolicy = "first"
	KeepLast  DuplicatePolicy = "last"
)

// ParseDuplicatePolicy reads "first" or "last", case-insensitively.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case KeepFirst, "":
		return KeepFirst, nil
	case KeepLast:
		return KeepLast, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q, expected first or last", value)
}

// NormalizerOptions configures how uploads are read
type NormalizerOptions struct {
	// PrimaryEncoding is tried first, FallbackEncoding only when the bytes
	// are not valid in the primary one. An empty fallback disables it.
	PrimaryEncoding  string
	FallbackEncoding string

	Duplicates DuplicatePolicy
}

// DefaultNormalizerOptions returns default normalizer options
func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		PrimaryEncoding:  EncodingUTF8,
		FallbackEncoding: EncodingWindows1252,
		Duplicates:       KeepFirst,
	}
}

// FinalizeStatistics represents finalization statistics
type FinalizeStatistics struct {
	Rows          int
	StockColumns  int
	WeekendRows   int
	FilledCells   int
	LeadingGaps   int
	ObservedCells int
}
