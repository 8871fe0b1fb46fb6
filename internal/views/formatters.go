// Package views turns normalized API records into display values for the cardsense commands.
// Nothing in this package performs I/O.
package views

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const displayDateLayout = "Jan 2, 2006"

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

// parseTimestamp accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
// Values without a zone are read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDisplayDate converts an ISO timestamp or YYYY-MM-DD date to "Jan 2, 2006" in loc.
// Unparseable input is returned unchanged.
func FormatDisplayDate(s string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, ok := parseTimestamp(s, loc)
	if !ok {
		return s
	}
	return t.In(loc).Format(displayDateLayout)
}

// FormatMonthYear converts a budget month (YYYY-MM) to "Dec 2025"
func FormatMonthYear(yearMonth string) string {
	t, err := time.Parse("2006-01", strings.TrimSpace(yearMonth))
	if err != nil {
		return yearMonth
	}
	return t.Format("Jan 2006")
}

// FormatCurrency formats an amount in US dollars, e.g. $1,234.50
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return sign + "$" + p.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// FormatPercent formats a percentage with one decimal place, e.g. 24.7%
func FormatPercent(pct float64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprint(number.Decimal(pct, number.Scale(1))) + "%"
}
