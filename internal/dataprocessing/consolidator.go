package dataprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"consolidator/internal/calendar"
	apperrors "consolidator/internal/errors"
	"consolidator/pkg/contracts/domain"
)

// Join left joins every series onto the calendar in the given order. Dates
// outside the calendar are ignored and calendar days without an
// observation are missing.
func Join(rng calendar.Range, series []*domain.StockSeries) (*domain.ConsolidatedTable, error) {
	table := &domain.ConsolidatedTable{
		Dates:   rng.Dates(),
		Columns: make([]domain.Column, 0, len(series)+1),
	}

	names := make(map[string]struct{}, len(series))
	for _, s := range series {
		switch s.Name {
		case domain.DateColumn, domain.WeekendColumn:
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("stock name %q is reserved", s.Name))
		}
		if _, dup := names[s.Name]; dup {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("stock %q was uploaded more than once", s.Name))
		}
		names[s.Name] = struct{}{}

		prices := make([]decimal.NullDecimal, len(table.Dates))
		for _, o := range s.Observations {
			if idx := rng.Index(o.Date); idx >= 0 {
				prices[idx] = decimal.NewNullDecimal(o.Price)
			}
		}
		table.Columns = append(table.Columns, domain.Column{
			Name:   s.Name,
			Kind:   domain.PriceColumn,
			Prices: prices,
		})
	}
	return table, nil
}

// Consolidate joins the series onto the calendar and finalizes the table.
func Consolidate(rng calendar.Range, series []*domain.StockSeries) (*domain.ConsolidatedTable, FinalizeStatistics, error) {
	table, err := Join(rng, series)
	if err != nil {
		return nil, FinalizeStatistics{}, err
	}
	stats, err := Finalize(table)
	if err != nil {
		return nil, FinalizeStatistics{}, err
	}
	return table, stats, nil
}
