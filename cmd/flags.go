package cmd

import (
	"fmt"
	"os"
	"time"

	"duetrack/internal/engine"
	"duetrack/internal/model"

	"github.com/shopspring/decimal"
)

const dayLayout = "2006-01-02"

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func parseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return t.Year(), t.Month(), nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func parseSaving(s string) (model.SavingStrategy, error) {
	switch model.SavingStrategy(s) {
	case model.SavingNone, model.SavingEven, model.SavingCustom:
		return model.SavingStrategy(s), nil
	}
	return "", fmt.Errorf("invalid saving strategy %q (want none, even, or custom)", s)
}

func parseAdjustment(s string) (model.Adjustment, error) {
	switch model.Adjustment(s) {
	case model.AdjustNone, model.AdjustPrevious, model.AdjustNext:
		return model.Adjustment(s), nil
	}
	return "", fmt.Errorf("invalid adjustment %q (want none, previous, or next)", s)
}

// reportValidation prints each validation message on its own line and
// returns true when err was a validation failure.
func reportValidation(err error) bool {
	verr, ok := engine.AsValidation(err)
	if !ok {
		return false
	}
	fmt.Fprintln(os.Stderr, "invalid definition:")
	for _, msg := range verr.Messages {
		fmt.Fprintf(os.Stderr, "  - %s\n", msg)
	}
	return true
}
