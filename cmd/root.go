package cmd

import (
	"fmt"
	"os"
	"strings"

	"duetrack/internal/calendar"
	"duetrack/internal/config"
	"duetrack/internal/engine"
	"duetrack/internal/model"
	"duetrack/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDB    string
	flagQuiet bool
)

var rootCmd = &cobra.Command{
	Use:   "duetrack",
	Short: "Recurring obligation tracker",
	Long:  "Track recurring financial obligations: schedules, due dates, savings balances, and payment history.",
	RunE:  runList,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default: XDG data dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress non-essential output")
}

// openService is the shared setup path used by all commands: config, store,
// business-day calculator, engine. The caller closes the store.
func openService() (*engine.Service, *store.SQLite, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("loading config: %w", err)
	}

	dbPath := cfg.DatabasePath()
	if flagDB != "" {
		dbPath = flagDB
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("opening database: %w", err)
	}

	holidays, err := cfg.HolidayProvider()
	if err != nil {
		st.Close()
		return nil, nil, cfg, err
	}
	calc := calendar.NewCalculator(holidays)

	svc := engine.NewService(st, calc,
		engine.WithDefaultHorizon(cfg.Sync.HorizonMonths),
		engine.WithActualDateTolerance(cfg.Sync.ActualDateToleranceDays),
		engine.WithDetectionCriteria(cfg.Criteria()),
	)
	return svc, st, cfg, nil
}

// resolveDefinition matches a definition by full ID, ID prefix, or exact
// name (case-insensitive). Ambiguous prefixes are an error.
func resolveDefinition(svc *engine.Service, arg string) (*model.Definition, error) {
	defs, err := svc.Definitions()
	if err != nil {
		return nil, err
	}

	var byPrefix []*model.Definition
	for _, d := range defs {
		if d.ID == arg {
			return d, nil
		}
		if strings.HasPrefix(d.ID, arg) {
			byPrefix = append(byPrefix, d)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}
	if len(byPrefix) > 1 {
		return nil, fmt.Errorf("ambiguous definition %q: %d matches", arg, len(byPrefix))
	}

	for _, d := range defs {
		if strings.EqualFold(d.Name, arg) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no definition matching %q", arg)
}

// resolveOccurrence matches an occurrence by full ID or ID prefix across all
// definitions.
func resolveOccurrence(svc *engine.Service, arg string) (*model.Definition, *model.Occurrence, error) {
	defs, err := svc.Definitions()
	if err != nil {
		return nil, nil, err
	}

	var matchDef *model.Definition
	var matchOcc *model.Occurrence
	matches := 0
	for _, d := range defs {
		for i := range d.Occurrences {
			o := &d.Occurrences[i]
			if o.ID == arg {
				return d, o, nil
			}
			if strings.HasPrefix(o.ID, arg) {
				matchDef, matchOcc = d, o
				matches++
			}
		}
	}
	switch matches {
	case 0:
		return nil, nil, fmt.Errorf("no occurrence matching %q", arg)
	case 1:
		return matchDef, matchOcc, nil
	default:
		return nil, nil, fmt.Errorf("ambiguous occurrence %q: %d matches", arg, matches)
	}
}
