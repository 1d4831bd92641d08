package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"consolidator/internal/calendar"
)

// dateLayouts are tried in order. Ambiguous numeric dates are read day
// first; ISO dates come first since a four-digit lead is unambiguous.
var dateLayouts = buildDateLayouts()

func buildDateLayouts() []string {
	days := []string{
		"2006-1-2",
		"2006/1/2",
		"20060102",
		"2.1.2006",
		"2/1/2006",
		"2-1-2006",
		"2.1.06",
		"2/1/06",
		"2-1-06",
	}
	clocks := []string{"", " 15:04:05", " 15:04", "T15:04:05", "T15:04"}

	layouts := make([]string, 0, len(days)*len(clocks)+8)
	for _, day := range days {
		for _, clock := range clocks {
			layouts = append(layouts, day+clock)
		}
	}
	return append(layouts,
		time.RFC3339,
		"2 Jan 2006",
		"2-Jan-2006",
		"2-Jan-06",
		"2 January 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006 15:04:05",
	)
}

var wordRE = regexp.MustCompile(`\p{L}+`)

var spanishMonths = map[string]string{
	"ene": "Jan", "enero": "January",
	"feb": "Feb", "febrero": "February",
	"mar": "Mar", "marzo": "March",
	"abr": "Apr", "abril": "April",
	"may": "May", "mayo": "May",
	"jun": "Jun", "junio": "June",
	"jul": "Jul", "julio": "July",
	"ago": "Aug", "agosto": "August",
	"sep": "Sep", "sept": "Sep", "septiembre": "September", "setiembre": "September",
	"oct": "Oct", "octubre": "October",
	"nov": "Nov", "noviembre": "November",
	"dic": "Dec", "diciembre": "December",
	"de": "",
}

func translateMonths(value string) string {
	if !strings.ContainsFunc(value, isLetter) {
		return value
	}
	value = wordRE.ReplaceAllStringFunc(value, func(word string) string {
		if en, ok := spanishMonths[strings.ToLower(word)]; ok {
			return en
		}
		return word
	})
	return strings.Join(strings.Fields(value), " ")
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 0x7f
}

// ParseDate reads a day-first date and returns its calendar day. ok is false
// for missing cells.
func ParseDate(raw string) (date time.Time, ok bool, err error) {
	value := strings.TrimSpace(raw)
	if IsMissing(value) {
		return time.Time{}, false, nil
	}

	value = translateMonths(value)
	for _, layout := range dateLayouts {
		if t, perr := time.Parse(layout, value); perr == nil {
			return calendar.Truncate(t), true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", raw)
}
