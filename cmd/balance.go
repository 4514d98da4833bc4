package cmd

import (
	"fmt"
	"time"

	"duetrack/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagBalRecord string
	flagBalRecalc string
	flagBalFrom   string
	flagBalStats  bool
)

var balanceCmd = &cobra.Command{
	Use:   "balance <definition>",
	Short: "Show or update an obligation's savings balance",
	Long: "Show the savings balance for a definition. Pass --record YYYY-MM to accrue " +
		"one month's saving amount, or --recalc YYYY-MM to recompute the expected totals.",
	Args: cobra.ExactArgs(1),
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().StringVar(&flagBalRecord, "record", "", "Accrue the saving amount for a month, YYYY-MM")
	balanceCmd.Flags().StringVar(&flagBalRecalc, "recalc", "", "Recompute expected totals up to a month, YYYY-MM")
	balanceCmd.Flags().StringVar(&flagBalFrom, "from", "", "Start date override for --recalc, YYYY-MM-DD")
	balanceCmd.Flags().BoolVar(&flagBalStats, "stats", false, "Print recalculation cache statistics")
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(_ *cobra.Command, args []string) error {
	svc, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	def, err := resolveDefinition(svc, args[0])
	if err != nil {
		return err
	}

	if flagBalRecord != "" {
		year, month, err := parseMonth(flagBalRecord)
		if err != nil {
			return err
		}
		bal, err := svc.RecordMonthlySavings(def.ID, year, month)
		if err != nil {
			return err
		}
		if !flagQuiet {
			fmt.Printf("Recorded savings for %04d-%02d: total saved %s.\n",
				year, int(month), cli.FormatAmount(bal.TotalSaved))
		}
	}

	if flagBalRecalc != "" {
		year, month, err := parseMonth(flagBalRecalc)
		if err != nil {
			return err
		}
		var from *time.Time
		if flagBalFrom != "" {
			f, err := parseDay(flagBalFrom)
			if err != nil {
				return err
			}
			from = &f
		}
		rec, err := svc.RecalculateBalance(def.ID, year, month, from)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("Recalculated through %04d-%02d", year, int(month)),
			Headers: []string{"Months", "Expected saved", "Paid"},
			Rows: [][]string{{
				fmt.Sprintf("%d", rec.MonthsElapsed),
				cli.FormatAmount(rec.TotalSaved),
				cli.FormatAmount(rec.TotalPaid),
			}},
		}))
	}

	bal, err := svc.Balance(def.ID)
	if err != nil {
		return err
	}
	fmt.Println()
	if bal == nil {
		fmt.Printf("  No balance recorded for %s yet.\n", def.Name)
	} else {
		last := "-"
		if bal.LastRecordedYear > 0 {
			last = fmt.Sprintf("%04d-%02d", bal.LastRecordedYear, int(bal.LastRecordedMonth))
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   def.Name,
			Headers: []string{"Saved", "Paid", "Available", "Last recorded"},
			Rows: [][]string{{
				cli.FormatAmount(bal.TotalSaved),
				cli.FormatAmount(bal.TotalPaid),
				cli.FormatAmount(bal.Available()),
				last,
			}},
		}))
	}

	if flagBalStats {
		stats := svc.Cache().Stats()
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Recalculation cache",
			Headers: []string{"Hits", "Misses", "Invalidations", "Entries"},
			Rows: [][]string{{
				fmt.Sprintf("%d", stats.Hits),
				fmt.Sprintf("%d", stats.Misses),
				fmt.Sprintf("%d", stats.Invalidations),
				fmt.Sprintf("%d", stats.Entries),
			}},
		}))
	}
	return nil
}
