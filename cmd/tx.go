package cmd

import (
	"fmt"
	"sort"
	"time"

	"duetrack/internal/calendar"
	"duetrack/internal/cli"
	"duetrack/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagTxAmount   string
	flagTxDate     string
	flagTxCategory string
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Manage the transaction history used for detection",
}

var txAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Record a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxAdd,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	RunE:  runTxList,
}

var txRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a transaction (occurrence links are cleared)",
	Args:    cobra.ExactArgs(1),
	RunE:    runTxRemove,
}

func init() {
	txAddCmd.Flags().StringVarP(&flagTxAmount, "amount", "a", "", "Amount (required)")
	txAddCmd.Flags().StringVarP(&flagTxDate, "date", "d", "", "Date, YYYY-MM-DD (default: today)")
	txAddCmd.Flags().StringVar(&flagTxCategory, "category", "", "Category ID")
	txAddCmd.MarkFlagRequired("amount")

	txCmd.AddCommand(txAddCmd, txListCmd, txRemoveCmd)
	rootCmd.AddCommand(txCmd)
}

func runTxAdd(_ *cobra.Command, args []string) error {
	amount, err := parseAmount(flagTxAmount)
	if err != nil {
		return err
	}
	date := calendar.DateOnly(time.Now().UTC())
	if flagTxDate != "" {
		if date, err = parseDay(flagTxDate); err != nil {
			return err
		}
	}

	_, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	tx := &model.Transaction{
		ID:        uuid.NewString(),
		Title:     args[0],
		Amount:    amount,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	if flagTxCategory != "" {
		if _, err := st.Category(flagTxCategory); err != nil {
			return fmt.Errorf("category %q not found", flagTxCategory)
		}
		tx.CategoryID = &flagTxCategory
	}
	if err := st.InsertTransaction(tx); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("Recorded %s: %s on %s (%s).\n",
			tx.Title, cli.FormatAmount(tx.Amount), cli.FormatDate(tx.Date), cli.ShortID(tx.ID))
	}
	return nil
}

func runTxList(_ *cobra.Command, _ []string) error {
	_, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	txs, err := st.Transactions()
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Println("\n  No transactions recorded.")
		return nil
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })

	fmt.Println()
	fmt.Println(cli.RenderTitle("TRANSACTIONS"))
	fmt.Println()

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		cat := "-"
		if tx.CategoryID != nil {
			cat = cli.ShortID(*tx.CategoryID)
		}
		rows = append(rows, []string{
			cli.FormatDate(tx.Date),
			tx.Title,
			cli.ShortID(tx.ID),
			cli.FormatAmount(tx.Amount),
			cat,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Title", "ID", "Amount", "Category"},
		Rows:    rows,
	}))
	return nil
}

func runTxRemove(_ *cobra.Command, args []string) error {
	_, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := fullTransactionID(st.Transactions, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteTransaction(id); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("Deleted transaction %s.\n", cli.ShortID(id))
	}
	return nil
}

// fullTransactionID expands an ID prefix to the stored transaction ID.
func fullTransactionID(list func() ([]model.Transaction, error), arg string) (string, error) {
	txs, err := list()
	if err != nil {
		return "", err
	}
	var match string
	matches := 0
	for _, tx := range txs {
		if tx.ID == arg {
			return arg, nil
		}
		if len(arg) > 0 && len(tx.ID) >= len(arg) && tx.ID[:len(arg)] == arg {
			match = tx.ID
			matches++
		}
	}
	switch matches {
	case 0:
		return "", fmt.Errorf("no transaction matching %q", arg)
	case 1:
		return match, nil
	default:
		return "", fmt.Errorf("ambiguous transaction %q: %d matches", arg, matches)
	}
}
