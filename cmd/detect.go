package cmd

import (
	"fmt"

	"duetrack/internal/cli"
	"duetrack/internal/detect"
	"duetrack/internal/engine"

	"github.com/spf13/cobra"
)

var (
	flagDetectApply  int
	flagDetectMinOcc int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Suggest recurring obligations from transaction history",
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().IntVar(&flagDetectApply, "apply", 0, "Create a definition from suggestion N (1-based)")
	detectCmd.Flags().IntVar(&flagDetectMinOcc, "min-occurrences", 0, "Minimum transactions per group (default from config)")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(_ *cobra.Command, _ []string) error {
	svc, st, cfg, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	var criteria *detect.Criteria
	if flagDetectMinOcc > 0 {
		c := cfg.Criteria()
		c.MinOccurrences = flagDetectMinOcc
		criteria = &c
	}
	suggestions, err := svc.DetectSuggestions(criteria)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("\n  No recurring patterns found.")
		return nil
	}

	if flagDetectApply > 0 {
		if flagDetectApply > len(suggestions) {
			return fmt.Errorf("suggestion %d out of range (have %d)", flagDetectApply, len(suggestions))
		}
		s := suggestions[flagDetectApply-1]
		pattern := s.DayPattern
		def, err := svc.CreateDefinition(engine.DefinitionInput{
			Name:             s.Name,
			Amount:           s.Amount,
			RecurrenceMonths: s.RecurrenceMonths,
			FirstDue:         s.LastSeen.AddDate(0, s.RecurrenceMonths, 0),
			DayPattern:       &pattern,
		})
		if err != nil {
			if reportValidation(err) {
				return fmt.Errorf("suggestion not applied")
			}
			return err
		}
		if !flagQuiet {
			fmt.Printf("Created %s (%s) from suggestion: %s every %s.\n",
				def.Name, cli.ShortID(def.ID), cli.FormatAmount(def.Amount),
				cli.FormatMonths(def.RecurrenceMonths))
		}
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("DETECTED PATTERNS"))
	fmt.Println()

	rows := make([][]string, 0, len(suggestions))
	for i, s := range suggestions {
		stable := "varies"
		if s.StableAmount {
			stable = "stable"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			s.Name,
			cli.FormatAmount(s.Amount),
			cli.FormatMonths(s.RecurrenceMonths),
			s.DayPattern.String(),
			fmt.Sprintf("%d", s.Occurrences),
			stable,
			cli.FormatPercent(s.Confidence),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Title", "Amount", "Every", "Pattern", "Seen", "Stability", "Confidence"},
		Rows:    rows,
	}))
	fmt.Println("\n  Apply one with `duetrack detect --apply N`.")
	return nil
}
