package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <definition>",
	Aliases: []string{"rm"},
	Short:   "Remove a definition and its occurrences",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(_ *cobra.Command, args []string) error {
	svc, st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	def, err := resolveDefinition(svc, args[0])
	if err != nil {
		return err
	}
	if err := svc.DeleteDefinition(def.ID); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("Removed %s and %d occurrence(s).\n", def.Name, len(def.Occurrences))
	}
	return nil
}
