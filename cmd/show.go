package cmd

import (
	"fmt"
	"strings"

	"duetrack/internal/cli"
	"duetrack/internal/model"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <definition>",
	Short: "Show a definition, its schedule, and its balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	svc, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	def, err := resolveDefinition(svc, args[0])
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(strings.ToUpper(def.Name)))
	fmt.Println()

	detail := [][]string{
		{"ID", def.ID},
		{"Amount", cli.FormatAmount(def.Amount)},
		{"Every", cli.FormatMonths(def.RecurrenceMonths)},
		{"First due", cli.FormatDate(def.FirstDue)},
		{"End date", cli.FormatOptionalDate(def.EndDate)},
		{"Lead", cli.FormatMonths(def.LeadMonths)},
		{"Saving", string(def.Saving)},
		{"Adjustment", string(def.Adjustment)},
	}
	if def.DayPattern != nil {
		detail = append(detail, []string{"Pattern", def.DayPattern.String()})
	}
	if def.Saving != model.SavingNone {
		detail = append(detail, []string{"Monthly saving", cli.FormatAmount(def.MonthlySaving())})
	}
	fmt.Print(cli.RenderTable(cli.Table{Rows: detail}))

	if len(def.Occurrences) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(def.Occurrences))
		for _, o := range def.Occurrences {
			actual := "-"
			if o.ActualDate != nil && o.ActualAmount != nil {
				actual = fmt.Sprintf("%s %s", cli.FormatDate(*o.ActualDate), cli.FormatAmount(*o.ActualAmount))
			}
			rows = append(rows, []string{
				cli.ShortID(o.ID),
				cli.FormatDate(o.Scheduled),
				cli.FormatAmount(o.ExpectedAmount),
				string(o.Status),
				actual,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Schedule",
			Headers: []string{"ID", "Scheduled", "Expected", "Status", "Actual"},
			Rows:    rows,
		}))
	}

	bal, err := svc.Balance(def.ID)
	if err != nil {
		return err
	}
	if bal != nil {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Balance",
			Headers: []string{"Saved", "Paid", "Available"},
			Rows: [][]string{{
				cli.FormatAmount(bal.TotalSaved),
				cli.FormatAmount(bal.TotalPaid),
				cli.FormatAmount(bal.Available()),
			}},
		}))
	}
	return nil
}
