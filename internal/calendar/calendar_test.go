package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "consolidator/internal/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		wantDays int
		wantErr  apperrors.ErrorType
	}{
		{name: "five days", start: "2024-01-01", end: "2024-01-05", wantDays: 5},
		{name: "single day", start: "2024-04-17", end: "2024-04-17", wantDays: 1},
		{name: "leap year", start: "2024-02-28", end: "2024-03-01", wantDays: 3},
		{name: "default range", start: "2024-04-17", end: "2025-04-17", wantDays: 366},
		{name: "whitespace", start: " 2024-01-01 ", end: "2024-01-02\n", wantDays: 2},
		{name: "start after end", start: "2024-01-05", end: "2024-01-01", wantErr: apperrors.ErrTypeValidation},
		{name: "bad start", start: "01/01/2024", end: "2024-01-05", wantErr: apperrors.ErrTypeParse},
		{name: "bad end", start: "2024-01-01", end: "2024-13-01", wantErr: apperrors.ErrTypeParse},
		{name: "empty", start: "", end: "2024-01-01", wantErr: apperrors.ErrTypeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Build(tt.start, tt.end, 0)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, r.Days())
			assert.Len(t, r.Dates(), tt.wantDays)
		})
	}
}

func TestBuildMaxDays(t *testing.T) {
	_, err := Build("2024-01-01", "2024-01-10", 9)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	r, err := Build("2024-01-01", "2024-01-10", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Days())
}

func TestDatesAreContiguous(t *testing.T) {
	r, err := Build("2023-12-25", "2024-03-15", 0)
	require.NoError(t, err)

	dates := r.Dates()
	require.NotEmpty(t, dates)
	assert.Equal(t, r.Start, dates[0])
	assert.Equal(t, r.End, dates[len(dates)-1])
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, Day, dates[i].Sub(dates[i-1]), "gap at %s", dates[i])
	}
}

func TestIndexAndContains(t *testing.T) {
	r, err := NewRange(date(2024, 1, 1), date(2024, 1, 5), 0)
	require.NoError(t, err)

	assert.Equal(t, 0, r.Index(date(2024, 1, 1)))
	assert.Equal(t, 4, r.Index(time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC)))
	assert.Equal(t, -1, r.Index(date(2023, 12, 31)))
	assert.Equal(t, -1, r.Index(date(2024, 1, 6)))
	assert.True(t, r.Contains(date(2024, 1, 3)))
	assert.Equal(t, "2024-01-01..2024-01-05", r.String())
}

func TestTruncateKeepsWallDate(t *testing.T) {
	loc := time.FixedZone("CLT", -4*60*60)
	got := Truncate(time.Date(2024, 1, 2, 23, 0, 0, 0, loc))
	assert.Equal(t, date(2024, 1, 2), got)
}

func TestIsWeekend(t *testing.T) {
	// 2024-01-06 is a Saturday.
	assert.True(t, IsWeekend(date(2024, 1, 6)))
	assert.True(t, IsWeekend(date(2024, 1, 7)))
	assert.False(t, IsWeekend(date(2024, 1, 8)))
	assert.False(t, IsWeekend(date(2024, 1, 5)))
}
