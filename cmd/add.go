package cmd

import (
	"fmt"

	"duetrack/internal/cli"
	"duetrack/internal/engine"
	"duetrack/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagAddAmount     string
	flagAddEvery      int
	flagAddFirst      string
	flagAddEnd        string
	flagAddLead       int
	flagAddSaving     string
	flagAddCustom     string
	flagAddAdjust     string
	flagAddPattern    string
	flagAddCategory   string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a recurring obligation",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagAddAmount, "amount", "a", "", "Expected amount per occurrence (required)")
	addCmd.Flags().IntVarP(&flagAddEvery, "every", "e", 1, "Recurrence interval in months")
	addCmd.Flags().StringVarP(&flagAddFirst, "first", "f", "", "First due date, YYYY-MM-DD (required)")
	addCmd.Flags().StringVar(&flagAddEnd, "end", "", "Last date an occurrence may fall on, YYYY-MM-DD")
	addCmd.Flags().IntVar(&flagAddLead, "lead", 0, "Months of notice before a due date")
	addCmd.Flags().StringVar(&flagAddSaving, "saving", "none", "Saving strategy: none, even, or custom")
	addCmd.Flags().StringVar(&flagAddCustom, "custom-monthly", "", "Monthly amount for the custom saving strategy")
	addCmd.Flags().StringVar(&flagAddAdjust, "adjust", "none", "Weekend/holiday adjustment: none, previous, or next")
	addCmd.Flags().StringVar(&flagAddPattern, "pattern", "", "Day pattern, e.g. fixed:15, eom, nth:2:Mon, fbd")
	addCmd.Flags().StringVar(&flagAddCategory, "category", "", "Category ID")
	addCmd.MarkFlagRequired("amount")
	addCmd.MarkFlagRequired("first")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	input := engine.DefinitionInput{
		Name:             args[0],
		RecurrenceMonths: flagAddEvery,
		LeadMonths:       flagAddLead,
	}

	var err error
	if input.Amount, err = parseAmount(flagAddAmount); err != nil {
		return err
	}
	if input.FirstDue, err = parseDay(flagAddFirst); err != nil {
		return err
	}
	if flagAddEnd != "" {
		end, err := parseDay(flagAddEnd)
		if err != nil {
			return err
		}
		input.EndDate = &end
	}
	if input.Saving, err = parseSaving(flagAddSaving); err != nil {
		return err
	}
	if flagAddCustom != "" {
		custom, err := parseAmount(flagAddCustom)
		if err != nil {
			return err
		}
		input.CustomMonthly = &custom
	}
	if input.Adjustment, err = parseAdjustment(flagAddAdjust); err != nil {
		return err
	}
	if flagAddPattern != "" {
		p, err := model.ParseDayPattern(flagAddPattern)
		if err != nil {
			return err
		}
		input.DayPattern = &p
	}
	if flagAddCategory != "" {
		input.CategoryID = &flagAddCategory
	}

	svc, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	def, err := svc.CreateDefinition(input)
	if err != nil {
		if reportValidation(err) {
			return fmt.Errorf("definition not created")
		}
		return err
	}

	if !flagQuiet {
		fmt.Printf("Added %s (%s): %s every %s, first due %s, %d occurrence(s) scheduled.\n",
			def.Name, cli.ShortID(def.ID), cli.FormatAmount(def.Amount),
			cli.FormatMonths(def.RecurrenceMonths), cli.FormatDate(def.FirstDue),
			len(def.Occurrences))
	}
	return nil
}
