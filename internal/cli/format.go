// Package cli provides formatting and rendering utilities for terminal
// output.
package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a monetary amount with two decimal places.
func FormatAmount(a decimal.Decimal) string {
	return a.StringFixed(2)
}

// FormatDate renders a day-granularity date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatOptionalDate renders a possibly-absent date.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatDate(*t)
}

// FormatMonths renders a month count, e.g. "1mo", "12mo".
func FormatMonths(n int) string {
	return fmt.Sprintf("%dmo", n)
}

// FormatPercent renders a ratio as a percentage.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

// ShortID abbreviates a UUID for table display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
