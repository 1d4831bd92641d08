package dataprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		missing bool
		wantErr bool
	}{
		{raw: "1.234,56", want: "1234.56"},
		{raw: "12,5", want: "12.5"},
		{raw: "100", want: "100"},
		{raw: "1.000.000", want: "1000000"},
		{raw: " -3,25 ", want: "-3.25"},
		{raw: "+7", want: "7"},
		{raw: "", missing: true},
		{raw: "   ", missing: true},
		{raw: "NaN", missing: true},
		{raw: "N/A", missing: true},
		{raw: "null", missing: true},
		{raw: "#N/A", missing: true},
		{raw: "abc", wantErr: true},
		{raw: "12,5,3", wantErr: true},
		{raw: "-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok, err := ParsePrice(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.missing {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(" NA "))
	assert.True(t, IsMissing("None"))
	assert.False(t, IsMissing("0"))
	assert.False(t, IsMissing("missing"))
}
