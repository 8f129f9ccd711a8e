// Package normalize turns the textual dates and amounts found in bank
// statement exports into time.Time and decimal.Decimal values.
package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first successful parse wins.
// "3/5/2024" is therefore March 5 (M/D is listed before D/M).
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"2/1/2006",
	"01-02-2006",
	"02-01-2006",
	"Jan 2, 2006",
}

// ParseError reports a value that could not be normalized.
type ParseError struct {
	Msg   string
	Value string
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return e.Msg
	}
	return e.Msg + ": " + e.Value
}

// ParseDate parses a statement date in any of the supported layouts.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Msg: "Unrecognized date", Value: s}
}
