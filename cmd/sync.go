package cmd

import (
	"fmt"
	"time"

	"duetrack/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagSyncAll     bool
	flagSyncHorizon int
	flagSyncAt      string
)

var syncCmd = &cobra.Command{
	Use:   "sync [definition]",
	Short: "Reconcile schedules against current definitions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&flagSyncAll, "all", false, "Synchronize every definition")
	syncCmd.Flags().IntVar(&flagSyncHorizon, "horizon", -1, "Horizon in months (default: config)")
	syncCmd.Flags().StringVar(&flagSyncAt, "at", "", "Reference date, YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(_ *cobra.Command, args []string) error {
	if len(args) == 0 && !flagSyncAll {
		return fmt.Errorf("name a definition or pass --all")
	}

	svc, st, cfg, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	horizon := flagSyncHorizon
	if horizon < 0 {
		horizon = cfg.Sync.HorizonMonths
	}

	var reference *time.Time
	if flagSyncAt != "" {
		at, err := parseDay(flagSyncAt)
		if err != nil {
			return err
		}
		reference = &at
	}

	if len(args) == 1 {
		def, err := resolveDefinition(svc, args[0])
		if err != nil {
			return err
		}
		summary, err := svc.Synchronize(def.ID, horizon, reference)
		if err != nil {
			return err
		}
		if !flagQuiet {
			fmt.Printf("%s: created %d, updated %d, removed %d.\n",
				def.Name, summary.Created, summary.Updated, summary.Removed)
		}
		return nil
	}

	defs, err := svc.Definitions()
	if err != nil {
		return err
	}
	var created, updated, removed int
	for _, def := range defs {
		summary, err := svc.Synchronize(def.ID, horizon, reference)
		if err != nil {
			return fmt.Errorf("synchronizing %s (%s): %w", def.Name, cli.ShortID(def.ID), err)
		}
		created += summary.Created
		updated += summary.Updated
		removed += summary.Removed
	}
	if !flagQuiet {
		fmt.Printf("Synchronized %d definition(s): created %d, updated %d, removed %d.\n",
			len(defs), created, updated, removed)
	}
	return nil
}
