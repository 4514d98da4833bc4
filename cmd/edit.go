package cmd

import (
	"fmt"

	"duetrack/internal/cli"
	"duetrack/internal/engine"
	"duetrack/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagEditName     string
	flagEditAmount   string
	flagEditEvery    int
	flagEditFirst    string
	flagEditEnd      string
	flagEditLead     int
	flagEditSaving   string
	flagEditCustom   string
	flagEditAdjust   string
	flagEditPattern  string
	flagEditCategory string
	flagEditSync     bool
)

var editCmd = &cobra.Command{
	Use:   "edit <definition>",
	Short: "Edit an obligation definition",
	Long:  "Edit a definition. Only the provided flags change; pass --sync to reconcile the schedule afterwards.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&flagEditName, "name", "", "New name")
	editCmd.Flags().StringVarP(&flagEditAmount, "amount", "a", "", "New expected amount")
	editCmd.Flags().IntVarP(&flagEditEvery, "every", "e", 0, "New recurrence interval in months")
	editCmd.Flags().StringVarP(&flagEditFirst, "first", "f", "", "New first due date, YYYY-MM-DD")
	editCmd.Flags().StringVar(&flagEditEnd, "end", "", "New end date, YYYY-MM-DD (\"-\" clears it)")
	editCmd.Flags().IntVar(&flagEditLead, "lead", 0, "New lead months")
	editCmd.Flags().StringVar(&flagEditSaving, "saving", "", "New saving strategy: none, even, or custom")
	editCmd.Flags().StringVar(&flagEditCustom, "custom-monthly", "", "New custom monthly amount (\"-\" clears it)")
	editCmd.Flags().StringVar(&flagEditAdjust, "adjust", "", "New adjustment: none, previous, or next")
	editCmd.Flags().StringVar(&flagEditPattern, "pattern", "", "New day pattern (\"-\" clears it)")
	editCmd.Flags().StringVar(&flagEditCategory, "category", "", "New category ID (\"-\" clears it)")
	editCmd.Flags().BoolVar(&flagEditSync, "sync", false, "Synchronize the schedule after editing")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	svc, st, cfg, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	def, err := resolveDefinition(svc, args[0])
	if err != nil {
		return err
	}

	input := engine.DefinitionInput{
		Name:             def.Name,
		Amount:           def.Amount,
		RecurrenceMonths: def.RecurrenceMonths,
		FirstDue:         def.FirstDue,
		EndDate:          def.EndDate,
		LeadMonths:       def.LeadMonths,
		Saving:           def.Saving,
		CustomMonthly:    def.CustomMonthly,
		Adjustment:       def.Adjustment,
		DayPattern:       def.DayPattern,
		CategoryID:       def.CategoryID,
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		input.Name = flagEditName
	}
	if flags.Changed("amount") {
		if input.Amount, err = parseAmount(flagEditAmount); err != nil {
			return err
		}
	}
	if flags.Changed("every") {
		input.RecurrenceMonths = flagEditEvery
	}
	if flags.Changed("first") {
		if input.FirstDue, err = parseDay(flagEditFirst); err != nil {
			return err
		}
	}
	if flags.Changed("end") {
		if flagEditEnd == "-" {
			input.EndDate = nil
		} else {
			end, err := parseDay(flagEditEnd)
			if err != nil {
				return err
			}
			input.EndDate = &end
		}
	}
	if flags.Changed("lead") {
		input.LeadMonths = flagEditLead
	}
	if flags.Changed("saving") {
		if input.Saving, err = parseSaving(flagEditSaving); err != nil {
			return err
		}
	}
	if flags.Changed("custom-monthly") {
		if flagEditCustom == "-" {
			input.CustomMonthly = nil
		} else {
			custom, err := parseAmount(flagEditCustom)
			if err != nil {
				return err
			}
			input.CustomMonthly = &custom
		}
	}
	if flags.Changed("adjust") {
		if input.Adjustment, err = parseAdjustment(flagEditAdjust); err != nil {
			return err
		}
	}
	if flags.Changed("pattern") {
		if flagEditPattern == "-" {
			input.DayPattern = nil
		} else {
			p, err := model.ParseDayPattern(flagEditPattern)
			if err != nil {
				return err
			}
			input.DayPattern = &p
		}
	}
	if flags.Changed("category") {
		if flagEditCategory == "-" {
			input.CategoryID = nil
		} else {
			input.CategoryID = &flagEditCategory
		}
	}

	if err := svc.UpdateDefinition(def.ID, input); err != nil {
		if reportValidation(err) {
			return fmt.Errorf("definition not updated")
		}
		return err
	}

	if flagEditSync {
		summary, err := svc.Synchronize(def.ID, cfg.Sync.HorizonMonths, nil)
		if err != nil {
			return err
		}
		if !flagQuiet {
			fmt.Printf("Updated %s; sync created %d, updated %d, removed %d.\n",
				input.Name, summary.Created, summary.Updated, summary.Removed)
		}
		return nil
	}

	if !flagQuiet {
		fmt.Printf("Updated %s (%s). Run `duetrack sync %s` to reconcile the schedule.\n",
			input.Name, cli.ShortID(def.ID), cli.ShortID(def.ID))
	}
	return nil
}
