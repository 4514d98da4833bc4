package cmd

import (
	"fmt"
	"sort"
	"time"

	"duetrack/internal/calendar"
	"duetrack/internal/cli"
	"duetrack/internal/model"

	"github.com/spf13/cobra"
)

var flagDueDays int

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Upcoming occurrences across all obligations",
	RunE:  runDue,
}

func init() {
	dueCmd.Flags().IntVarP(&flagDueDays, "days", "n", 30, "Window in days")
	rootCmd.AddCommand(dueCmd)
}

type dueEntry struct {
	def *model.Definition
	occ model.Occurrence
}

func runDue(_ *cobra.Command, _ []string) error {
	svc, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	defs, err := svc.Definitions()
	if err != nil {
		return err
	}

	today := calendar.DateOnly(time.Now().UTC())
	until := today.AddDate(0, 0, flagDueDays)

	var entries []dueEntry
	for _, d := range defs {
		for _, o := range d.Occurrences {
			if o.Locked() || o.Scheduled.After(until) {
				continue
			}
			entries = append(entries, dueEntry{def: d, occ: o})
		}
	}
	if len(entries) == 0 {
		fmt.Printf("\n  Nothing due in the next %d days.\n", flagDueDays)
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].occ.Scheduled.Before(entries[j].occ.Scheduled)
	})

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DUE  Next %dd", flagDueDays)))
	fmt.Println()

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		when := cli.FormatDate(e.occ.Scheduled)
		if e.occ.Scheduled.Before(today) {
			when += " (overdue)"
		}
		rows = append(rows, []string{
			e.def.Name,
			cli.ShortID(e.occ.ID),
			when,
			cli.FormatAmount(e.occ.ExpectedAmount),
			string(e.occ.Status),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Obligation", "ID", "Scheduled", "Expected", "Status"},
		Rows:    rows,
	}))
	return nil
}
