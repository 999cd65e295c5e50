// Package config defines the dataset build configuration.
//
// A Config is built with New or Load and passed explicitly to the
// components that need it.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config contains the dataset build configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the logrus formatter: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// RawDataDir holds the input CSVs; ProcessedDataDir receives outputs.
	RawDataDir       string `koanf:"raw_data_dir" validate:"required"`
	ProcessedDataDir string `koanf:"processed_data_dir" validate:"required"`

	// File names, resolved against the directories above unless absolute.
	FightsFile   string `koanf:"fights_file" validate:"required"`
	RankingsFile string `koanf:"rankings_file" validate:"required"`
	OutputFile   string `koanf:"output_file" validate:"required"`

	// RandomState seeds the train/test shuffle.
	RandomState int64 `koanf:"random_state"`

	// TestSize is the test fraction of the train/test split.
	TestSize float64 `koanf:"test_size" validate:"gt=0,lt=1"`

	// TargetVariable names the column the split treats as the label.
	TargetVariable string `koanf:"target_variable" validate:"required"`

	// LookbackWindow is the number of prior fights in each rolling average.
	LookbackWindow int `koanf:"lookback_window" validate:"gte=1"`

	// RelevantStats is the ordered set of stat columns to average.
	RelevantStats []string `koanf:"relevant_stats" validate:"required,min=1,unique,dive,required,excludesall=0x2C"`

	// MissingValue is written for the missing-value sentinel.
	MissingValue string `koanf:"missing_value"`

	// SplitEnabled writes <output>_train.csv and <output>_test.csv.
	SplitEnabled bool `koanf:"split_enabled"`

	// SplitDecisiveOnly keeps only rows with a decisive target in split files.
	SplitDecisiveOnly bool `koanf:"split_decisive_only"`

	// SummaryEnabled writes build_summary.md into ProcessedDataDir.
	SummaryEnabled bool `koanf:"summary_enabled"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// Optional export sinks.
	PostgresDSN   string `koanf:"postgres_dsn"`
	ClickhouseDSN string `koanf:"clickhouse_dsn"`
}

// New creates a Config with the project defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		RawDataDir:       filepath.Join("data", "raw"),
		ProcessedDataDir: filepath.Join("data", "processed"),
		FightsFile:       "ufc-master.csv",
		RankingsFile:     "ufc-rankings.csv",
		OutputFile:       "ufc-processed.csv",
		RandomState:      42,
		TestSize:         0.2,
		TargetVariable:   "winner",
		LookbackWindow:   3,
		RelevantStats: []string{
			"strikes_landed",
			"strikes_attempted",
			"takedowns_landed",
			"takedowns_attempted",
			"significant_strikes",
		},
		MissingValue:   "",
		SummaryEnabled: true,
	}
}

// FightsPath returns the resolved fights CSV path.
func (c *Config) FightsPath() string {
	return resolve(c.RawDataDir, c.FightsFile)
}

// RankingsPath returns the resolved rankings CSV path.
func (c *Config) RankingsPath() string {
	return resolve(c.RawDataDir, c.RankingsFile)
}

// OutputPath returns the resolved processed CSV path.
func (c *Config) OutputPath() string {
	return resolve(c.ProcessedDataDir, c.OutputFile)
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

var validate = validator.New()

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
