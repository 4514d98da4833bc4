package cmd

import (
	"fmt"
	"time"

	"duetrack/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagCompleteDate   string
	flagCompleteAmount string
	flagCompleteTx     string
)

var completeCmd = &cobra.Command{
	Use:   "complete <occurrence>",
	Short: "Mark an occurrence as paid",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func init() {
	completeCmd.Flags().StringVarP(&flagCompleteDate, "date", "d", "", "Actual payment date, YYYY-MM-DD (default: today)")
	completeCmd.Flags().StringVarP(&flagCompleteAmount, "amount", "a", "", "Actual amount (default: expected amount)")
	completeCmd.Flags().StringVar(&flagCompleteTx, "tx", "", "Transaction ID to link")
	rootCmd.AddCommand(completeCmd)
}

func runComplete(_ *cobra.Command, args []string) error {
	svc, st, cfg, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	def, occ, err := resolveOccurrence(svc, args[0])
	if err != nil {
		return err
	}

	actualDate := time.Now().UTC()
	if flagCompleteDate != "" {
		if actualDate, err = parseDay(flagCompleteDate); err != nil {
			return err
		}
	}

	actualAmount := occ.ExpectedAmount
	if flagCompleteAmount != "" {
		if actualAmount, err = parseAmount(flagCompleteAmount); err != nil {
			return err
		}
	}

	var txID *string
	if flagCompleteTx != "" {
		txID = &flagCompleteTx
	}

	summary, err := svc.MarkCompleted(occ.ID, actualDate, actualAmount, txID, cfg.Sync.HorizonMonths)
	if err != nil {
		if reportValidation(err) {
			return fmt.Errorf("occurrence not completed")
		}
		return err
	}

	if !flagQuiet {
		diff := actualAmount.Sub(occ.ExpectedAmount)
		note := ""
		switch {
		case diff.IsPositive():
			note = fmt.Sprintf(" (%s over expected)", cli.FormatAmount(diff))
		case diff.IsNegative():
			note = fmt.Sprintf(" (%s under expected)", cli.FormatAmount(diff.Neg()))
		}
		fmt.Printf("Completed %s for %s%s; sync created %d, updated %d, removed %d.\n",
			def.Name, cli.FormatAmount(actualAmount), note,
			summary.Created, summary.Updated, summary.Removed)
	}
	return nil
}
