package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConsolidatedTableLookup(t *testing.T) {
	table := &ConsolidatedTable{
		Dates: []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Columns: []Column{
			{Name: "AAA", Kind: PriceColumn},
			{Name: WeekendColumn, Kind: FlagColumn, Flags: []bool{false}},
		},
	}

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"AAA", WeekendColumn}, table.ColumnNames())

	col, ok := table.Column(WeekendColumn)
	assert.True(t, ok)
	assert.Equal(t, FlagColumn, col.Kind)

	_, ok = table.Column("ZZZ")
	assert.False(t, ok)
}
