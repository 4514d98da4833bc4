package cmd

import (
	"fmt"
	"sort"

	"duetrack/internal/cli"
	"duetrack/internal/model"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List obligation definitions",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	svc, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	defs, err := svc.Definitions()
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Println("\n  No definitions yet. Add one with `duetrack add`.")
		return nil
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	fmt.Println()
	fmt.Println(cli.RenderTitle("OBLIGATIONS"))
	fmt.Println()

	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		next := "-"
		if occ := nextOpen(d); occ != nil {
			next = cli.FormatDate(occ.Scheduled)
		}
		pattern := "-"
		if d.DayPattern != nil {
			pattern = d.DayPattern.String()
		}
		rows = append(rows, []string{
			d.Name,
			cli.ShortID(d.ID),
			cli.FormatAmount(d.Amount),
			cli.FormatMonths(d.RecurrenceMonths),
			pattern,
			next,
			fmt.Sprintf("%d", len(d.Occurrences)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Name", "ID", "Amount", "Every", "Pattern", "Next due", "Occ"},
		Rows:    rows,
	}))
	return nil
}

// nextOpen returns the earliest occurrence still planned or saving.
func nextOpen(d *model.Definition) *model.Occurrence {
	var next *model.Occurrence
	for i := range d.Occurrences {
		o := &d.Occurrences[i]
		if o.Locked() {
			continue
		}
		if next == nil || o.Scheduled.Before(next.Scheduled) {
			next = o
		}
	}
	return next
}
