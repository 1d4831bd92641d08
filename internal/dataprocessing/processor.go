package dataprocessing

import (
	"sort"

	"github.com/shopspring/decimal"

	"consolidator/internal/calendar"
	"consolidator/pkg/contracts/domain"
)

// ForwardFillProcessor carries the last known price of every stock column
// into the following missing rows. Rows before a column's first value stay
// missing.
type ForwardFillProcessor struct {
	filled      int
	leadingGaps int
}

// NewForwardFillProcessor creates a new forward-fill processor
func NewForwardFillProcessor() *ForwardFillProcessor {
	return &ForwardFillProcessor{}
}

// Process fills every price column of the table
func (f *ForwardFillProcessor) Process(table *domain.ConsolidatedTable) error {
	for i := range table.Columns {
		col := &table.Columns[i]
		if col.Kind != domain.PriceColumn {
			continue
		}
		filled, leading := FillColumn(col.Prices)
		f.filled += filled
		f.leadingGaps += leading
	}
	return nil
}

// Filled returns the number of cells filled so far.
func (f *ForwardFillProcessor) Filled() int { return f.filled }

// LeadingGaps returns the number of cells left missing before a first value.
func (f *ForwardFillProcessor) LeadingGaps() int { return f.leadingGaps }

// FillColumn forward fills values in place and returns how many cells were
// filled and how many leading cells remain missing.
func FillColumn(values []decimal.NullDecimal) (filled, leading int) {
	var last decimal.NullDecimal
	for i, v := range values {
		if v.Valid {
			last = v
			continue
		}
		if !last.Valid {
			leading++
			continue
		}
		values[i] = last
		filled++
	}
	return filled, leading
}

// WeekendFlagProcessor appends the Fin_de_semana column
type WeekendFlagProcessor struct{}

// Process adds a flag column that is true on Saturdays and Sundays
func (WeekendFlagProcessor) Process(table *domain.ConsolidatedTable) error {
	flags := make([]bool, len(table.Dates))
	for i, d := range table.Dates {
		flags[i] = calendar.IsWeekend(d)
	}
	table.Columns = append(table.Columns, domain.Column{
		Name:  domain.WeekendColumn,
		Kind:  domain.FlagColumn,
		Flags: flags,
	})
	return nil
}

// SortColumnsProcessor orders the data columns by name
type SortColumnsProcessor struct{}

// Process sorts columns by byte-wise name comparison
func (SortColumnsProcessor) Process(table *domain.ConsolidatedTable) error {
	sort.SliceStable(table.Columns, func(i, j int) bool {
		return table.Columns[i].Name < table.Columns[j].Name
	})
	return nil
}

// Finalize adds the weekend flag, forward fills and sorts the columns.
func Finalize(table *domain.ConsolidatedTable) (FinalizeStatistics, error) {
	ffill := NewForwardFillProcessor()
	steps := []Processor{WeekendFlagProcessor{}, ffill, SortColumnsProcessor{}}

	observed := 0
	for _, col := range table.Columns {
		for _, p := range col.Prices {
			if p.Valid {
				observed++
			}
		}
	}

	for _, step := range steps {
		if err := step.Process(table); err != nil {
			return FinalizeStatistics{}, err
		}
	}

	stats := FinalizeStatistics{
		Rows:          table.Len(),
		FilledCells:   ffill.Filled(),
		LeadingGaps:   ffill.LeadingGaps(),
		ObservedCells: observed,
	}
	for _, col := range table.Columns {
		switch col.Kind {
		case domain.PriceColumn:
			stats.StockColumns++
		case domain.FlagColumn:
			for _, weekend := range col.Flags {
				if weekend {
					stats.WeekendRows++
				}
			}
		}
	}
	return stats, nil
}
