// Package config loads duetrack settings from a TOML file under the XDG
// config directory. The detection thresholds default to the engine's tuned
// constants; the file exists so they stay configuration, not code.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"duetrack/internal/calendar"
	"duetrack/internal/detect"
)

// Config holds all duetrack configuration.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Sync      SyncConfig      `toml:"sync"`
	Detection DetectionConfig `toml:"detection"`
	Calendar  CalendarConfig  `toml:"calendar"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DatabasePath string `toml:"database_path,omitempty"`
}

// SyncConfig holds schedule synchronization settings.
type SyncConfig struct {
	HorizonMonths          int `toml:"horizon_months"`
	ActualDateToleranceDays int `toml:"actual_date_tolerance_days"`
}

// DetectionConfig holds the pattern-detection thresholds.
type DetectionConfig struct {
	MinOccurrences     int     `toml:"min_occurrences"`
	MinTitleSimilarity float64 `toml:"min_title_similarity"`
	IntervalMatchRatio float64 `toml:"interval_match_ratio"`
	DayToleranceDays   int     `toml:"day_tolerance_days"`
	AmountCVTolerance  float64 `toml:"amount_cv_tolerance"`
}

// CalendarConfig holds holiday data for the business-day calculator.
type CalendarConfig struct {
	// Holidays are dates in 2006-01-02 form.
	Holidays []string `toml:"holidays,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	c := detect.DefaultCriteria()
	return Config{
		Sync: SyncConfig{
			HorizonMonths:          12,
			ActualDateToleranceDays: 90,
		},
		Detection: DetectionConfig{
			MinOccurrences:     c.MinOccurrences,
			MinTitleSimilarity: c.MinTitleSimilarity,
			IntervalMatchRatio: c.IntervalMatchRatio,
			DayToleranceDays:   c.DayToleranceDays,
			AmountCVTolerance:  c.AmountCVTolerance,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "duetrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "duetrack")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns where the database lives by default.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "duetrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "duetrack")
}

// DatabasePath returns the configured database path or the default.
func (c Config) DatabasePath() string {
	if c.General.DatabasePath != "" {
		return c.General.DatabasePath
	}
	return filepath.Join(DataDir(), "duetrack.db")
}

// Criteria converts the detection section into engine criteria.
func (c Config) Criteria() detect.Criteria {
	return detect.Criteria{
		MinOccurrences:     c.Detection.MinOccurrences,
		MinTitleSimilarity: c.Detection.MinTitleSimilarity,
		IntervalMatchRatio: c.Detection.IntervalMatchRatio,
		DayToleranceDays:   c.Detection.DayToleranceDays,
		AmountCVTolerance:  c.Detection.AmountCVTolerance,
	}
}

// HolidayProvider builds a static provider from the configured dates.
// Unparseable entries are reported, not skipped silently.
func (c Config) HolidayProvider() (calendar.HolidayProvider, error) {
	dates := make([]time.Time, 0, len(c.Calendar.Holidays))
	for _, s := range c.Calendar.Holidays {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("parsing holiday %q: %w", s, err)
		}
		dates = append(dates, d)
	}
	return calendar.NewStaticHolidays(dates), nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
