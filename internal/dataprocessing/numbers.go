package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// naTokens are the cell values read as missing, matching the pandas
// read_csv defaults.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell is a missing value.
func IsMissing(raw string) bool {
	_, ok := naTokens[strings.TrimSpace(raw)]
	return ok
}

// ParsePrice parses a price that uses "." for thousands and "," for
// decimals, e.g. "1.234,56". ok is false for missing cells.
func ParsePrice(raw string) (price decimal.Decimal, ok bool, err error) {
	value := strings.TrimSpace(raw)
	if IsMissing(value) {
		return decimal.Decimal{}, false, nil
	}

	value = strings.ReplaceAll(value, ".", "")
	value = strings.Replace(value, ",", ".", 1)
	value = strings.TrimPrefix(value, "+")

	price, err = decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("invalid price %q", raw)
	}
	return price, true, nil
}
