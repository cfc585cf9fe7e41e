// =============================================================================
// Slip Report - Configuration Module
// =============================================================================
//
// This module loads the main application configuration from a YAML file.
// Every setting has a default, so a missing file is not an error: the tool
// runs with the built-in defaults.
//
// CONFIGURATION FILE (config.yaml):
//   input_dir: ./input
//   output_dir: ./output
//   formats: [xlsx, json]
//   expected_wards:
//     first: 1
//     last: 70
//   server:
//     addr: ":8080"
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/slip-report/internal/export"
	"github.com/ginjaninja78/slip-report/internal/report"
	"github.com/ginjaninja78/slip-report/internal/sorter"
)

var knownFormats = lo.SliceToMap(export.Formats, func(f string) (string, bool) { return f, true })

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for *.csv files when analyze is given no arguments.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the exported reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives analyzed input files when ArchiveInputs is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveInputs moves each input file to InputArchiveDir after a
	// successful run.
	// Default: false
	ArchiveInputs bool `yaml:"archive_inputs"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names exported files. Placeholders:
	//   {uuid}      - the run id
	//   {timestamp} - run start (YYYYMMDD_HHMMSS)
	//   {original}  - input file name without extension
	//   {report}    - "report" for workbook/document formats, or the report
	//                 kind ("supervisors", "wards") for per-report formats
	// The format extension is appended.
	// Default: "{original}_{report}_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// Formats lists the exporters to run.
	// Valid values: "xlsx", "xml", "csv", "json"
	// Default: ["xlsx"]
	Formats []string `yaml:"formats"`

	// ExpectedWards is the ward universe for coverage reporting.
	ExpectedWards WardConfig `yaml:"expected_wards"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files analyzed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// Workers is the number of parallel aggregation chunks per file.
	// 1 aggregates sequentially.
	// Default: 4
	Workers int `yaml:"workers"`

	// ContinueOnError keeps analyzing other files after one fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	Server ServerConfig `yaml:"server"`
	Sort   SortConfig   `yaml:"sort"`
}

// WardConfig defines the expected ward set either as an inclusive numeric
// range or as an explicit list. IDs wins when both are given.
type WardConfig struct {
	First int      `yaml:"first"`
	Last  int      `yaml:"last"`
	IDs   []string `yaml:"ids"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadMB caps the request body.
	// Default: 32
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// SortConfig holds the initial sort column of each report. Empty keeps the
// default report order.
type SortConfig struct {
	Supervisors string `yaml:"supervisors"`
	Wards       string `yaml:"wards"`
}

// ShouldContinueOnError returns the effective ContinueOnError value.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// WardSet builds the expected ward set.
func (c *MainConfig) WardSet() report.WardSet {
	if len(c.ExpectedWards.IDs) > 0 {
		return report.NewWardSet(c.ExpectedWards.IDs)
	}
	return report.NewWardRange(c.ExpectedWards.First, c.ExpectedWards.Last)
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. Defaults are returned when the
//     file does not exist.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses, defaults and validates YAML configuration bytes.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{report}_{timestamp}"
	}
	if len(config.Formats) == 0 {
		config.Formats = []string{export.FormatXLSX}
	}
	for i, f := range config.Formats {
		config.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if len(config.ExpectedWards.IDs) == 0 && config.ExpectedWards.First == 0 && config.ExpectedWards.Last == 0 {
		config.ExpectedWards.First = 1
		config.ExpectedWards.Last = report.DefaultWardCount
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Workers == 0 {
		config.Workers = 4
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.MaxUploadMB == 0 {
		config.Server.MaxUploadMB = 32
	}
}

// validateMainConfig validates the main configuration. Directories are
// created lazily by the file manager, not here.
func validateMainConfig(config *MainConfig) error {
	var errs []error

	for _, f := range config.Formats {
		if !knownFormats[f] {
			errs = append(errs, fmt.Errorf("unknown output format %q", f))
		}
	}
	if !knownLogLevels[config.LogLevel] {
		errs = append(errs, fmt.Errorf("unknown log level %q", config.LogLevel))
	}
	if config.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("max_concurrency must be positive, got %d", config.MaxConcurrency))
	}
	if config.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", config.Workers))
	}
	if len(config.ExpectedWards.IDs) == 0 && config.ExpectedWards.Last < config.ExpectedWards.First {
		errs = append(errs, fmt.Errorf("expected_wards: last (%d) is before first (%d)",
			config.ExpectedWards.Last, config.ExpectedWards.First))
	}
	if col := config.Sort.Supervisors; col != "" {
		if _, ok := sorter.SupervisorColumn(col); !ok {
			errs = append(errs, fmt.Errorf("sort.supervisors: %w: %q", sorter.ErrUnknownColumn, col))
		}
	}
	if col := config.Sort.Wards; col != "" {
		if _, ok := sorter.WardColumn(col); !ok {
			errs = append(errs, fmt.Errorf("sort.wards: %w: %q", sorter.ErrUnknownColumn, col))
		}
	}

	return errors.Join(errs...)
}
