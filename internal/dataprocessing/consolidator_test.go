package dataprocessing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consolidator/internal/calendar"
	apperrors "consolidator/internal/errors"
	"consolidator/pkg/contracts/domain"
)

func series(name string, prices map[time.Time]int64) *domain.StockSeries {
	s := &domain.StockSeries{Name: name}
	for d, p := range prices {
		s.Observations = append(s.Observations, domain.Observation{Date: d, Price: decimal.NewFromInt(p)})
	}
	return s
}

func mustRange(t *testing.T, start, end string) calendar.Range {
	t.Helper()
	r, err := calendar.Build(start, end, 0)
	require.NoError(t, err)
	return r
}

func TestConsolidateEndToEnd(t *testing.T) {
	n := newTestNormalizer(t, DefaultNormalizerOptions())

	aaa, err := n.Normalize(domain.Upload{Name: "AAA.csv", Content: []byte(
		"Fecha,Precio\n01/01/2024,\"100,5\"\n03/01/2024,\"1.101,25\"\n")})
	require.NoError(t, err)
	bbb, err := n.Normalize(domain.Upload{Name: "BBB.csv", Content: []byte(
		"Fecha,Precio\n01/01/2024,10\n02/01/2024,11\n03/01/2024,12\n04/01/2024,13\n05/01/2024,14\n")})
	require.NoError(t, err)

	// Upload order is deliberately not alphabetical.
	table, stats, err := Consolidate(mustRange(t, "2024-01-01", "2024-01-05"), []*domain.StockSeries{bbb, aaa})
	require.NoError(t, err)

	require.Equal(t, 5, table.Len())
	assert.Equal(t, []string{"AAA", "BBB", domain.WeekendColumn}, table.ColumnNames())

	aaaCol, _ := table.Column("AAA")
	wantAAA := []string{"100.5", "100.5", "1101.25", "1101.25", "1101.25"}
	for i, w := range wantAAA {
		require.True(t, aaaCol.Prices[i].Valid, "AAA row %d", i)
		assert.True(t, decimal.RequireFromString(w).Equal(aaaCol.Prices[i].Decimal), "AAA row %d", i)
	}

	bbbCol, _ := table.Column("BBB")
	for i := 0; i < 5; i++ {
		require.True(t, bbbCol.Prices[i].Valid)
		assert.True(t, decimal.NewFromInt(int64(10+i)).Equal(bbbCol.Prices[i].Decimal))
	}

	flags, _ := table.Column(domain.WeekendColumn)
	assert.Equal(t, []bool{false, false, false, false, false}, flags.Flags)

	assert.Equal(t, 3, stats.FilledCells)
	assert.Equal(t, 0, stats.LeadingGaps)
	assert.Equal(t, 2, stats.StockColumns)
	assert.Equal(t, 7, stats.ObservedCells)
}

func TestJoinOneValuePerDate(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-10")
	s := series("X", map[time.Time]int64{
		day(2023, 12, 31): 1,
		day(2024, 1, 2):   2,
		day(2024, 1, 11):  3,
	})

	table, err := Join(rng, []*domain.StockSeries{s})
	require.NoError(t, err)
	require.Equal(t, rng.Days(), table.Len())

	col, _ := table.Column("X")
	assert.Len(t, col.Prices, rng.Days())
	valid := 0
	for _, p := range col.Prices {
		if p.Valid {
			valid++
		}
	}
	assert.Equal(t, 1, valid)
	assert.True(t, col.Prices[1].Valid)
}

func TestConsolidateLeadingGapsStayMissing(t *testing.T) {
	rng := mustRange(t, "2024-01-05", "2024-01-09")
	s := series("LATE", map[time.Time]int64{day(2024, 1, 8): 50})

	table, stats, err := Consolidate(rng, []*domain.StockSeries{s})
	require.NoError(t, err)

	col, _ := table.Column("LATE")
	assert.False(t, col.Prices[0].Valid)
	assert.False(t, col.Prices[2].Valid)
	assert.True(t, col.Prices[3].Valid)
	assert.True(t, col.Prices[4].Valid)
	assert.Equal(t, 3, stats.LeadingGaps)
	assert.Equal(t, 1, stats.FilledCells)

	flags, _ := table.Column(domain.WeekendColumn)
	assert.Equal(t, []bool{false, true, true, false, false}, flags.Flags)
	assert.Equal(t, 2, stats.WeekendRows)
}

func TestConsolidateNoGapsAfterFirstObservation(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-03-31")
	s := series("SPARSE", map[time.Time]int64{
		day(2024, 1, 15): 1,
		day(2024, 2, 20): 2,
		day(2024, 3, 1):  3,
	})

	table, _, err := Consolidate(rng, []*domain.StockSeries{s})
	require.NoError(t, err)

	col, _ := table.Column("SPARSE")
	first := rng.Index(day(2024, 1, 15))
	for i := first; i < table.Len(); i++ {
		assert.True(t, col.Prices[i].Valid, "row %d", i)
	}
}

func TestJoinRejectsBadNames(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-02")

	tests := []struct {
		name   string
		series []*domain.StockSeries
	}{
		{"duplicate", []*domain.StockSeries{{Name: "AAA"}, {Name: "AAA"}}},
		{"date column", []*domain.StockSeries{{Name: domain.DateColumn}}},
		{"weekend column", []*domain.StockSeries{{Name: domain.WeekendColumn}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Join(rng, tt.series)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
}

func TestConsolidateWithoutSeries(t *testing.T) {
	table, _, err := Consolidate(mustRange(t, "2024-01-06", "2024-01-07"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.WeekendColumn}, table.ColumnNames())
}
