// Package cmd implements the duetrack CLI commands.
package cmd

import (
	"fmt"

	"duetrack/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database: %s\n", cfg.DatabasePath())
	fmt.Println()

	fmt.Println("  [Sync]")
	fmt.Printf("    Horizon:               %d months\n", cfg.Sync.HorizonMonths)
	fmt.Printf("    Actual date tolerance: %d days\n", cfg.Sync.ActualDateToleranceDays)
	fmt.Println()

	fmt.Println("  [Detection]")
	fmt.Printf("    Min occurrences:      %d\n", cfg.Detection.MinOccurrences)
	fmt.Printf("    Min title similarity: %.2f\n", cfg.Detection.MinTitleSimilarity)
	fmt.Printf("    Interval match ratio: %.2f\n", cfg.Detection.IntervalMatchRatio)
	fmt.Printf("    Day tolerance:        %d days\n", cfg.Detection.DayToleranceDays)
	fmt.Printf("    Amount CV tolerance:  %.2f\n", cfg.Detection.AmountCVTolerance)
	fmt.Println()

	fmt.Println("  [Calendar]")
	if len(cfg.Calendar.Holidays) == 0 {
		fmt.Println("    Holidays: none (weekends only)")
	} else {
		fmt.Printf("    Holidays: %d configured\n", len(cfg.Calendar.Holidays))
		for _, h := range cfg.Calendar.Holidays {
			fmt.Printf("      %s\n", h)
		}
	}
	fmt.Println()

	fmt.Println("  Run `duetrack config init` to write the file.")
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config file already exists at %s", config.Path())
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", config.Path())
	return nil
}
