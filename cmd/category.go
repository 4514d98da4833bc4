package cmd

import (
	"fmt"
	"sort"

	"duetrack/internal/cli"
	"duetrack/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE:  runCategoryList,
}

func init() {
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runCategoryAdd(_ *cobra.Command, args []string) error {
	_, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	cat := &model.Category{
		ID:   uuid.NewString(),
		Name: args[0],
	}
	if err := st.InsertCategory(cat); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("Added category %s (%s).\n", cat.Name, cli.ShortID(cat.ID))
	}
	return nil
}

func runCategoryList(_ *cobra.Command, _ []string) error {
	_, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	cats, err := st.Categories()
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Println("\n  No categories yet.")
		return nil
	}

	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.Name, c.ID})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Name", "ID"},
		Rows:    rows,
	}))
	return nil
}
