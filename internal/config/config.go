package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file inside the txtmerge home
const ConfigFileName = "config.yaml"

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every finished run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (default: <home>/history.db)
	DBPath string `yaml:"db_path"`
}

// Config represents txtmerge configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where per-run log files are written (empty disables file logs)
	LogDir string `yaml:"log_dir"`

	// Extensions lists the file extensions summarized during a run
	Extensions []string `yaml:"extensions"`

	// ExcludeDirs lists directory names skipped during discovery
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// SkipHidden skips dot-directories during discovery
	SkipHidden bool `yaml:"skip_hidden"`

	// Pace is the delay between files, purely for visible progress
	Pace time.Duration `yaml:"pace"`

	// OutputDir is the directory created inside the scanned root for workbooks
	OutputDir string `yaml:"output_dir"`

	// OutputPrefix is the workbook file name prefix
	OutputPrefix string `yaml:"output_prefix"`

	// OpenAfterExport opens the workbook with the default application
	OpenAfterExport bool `yaml:"open_after_export"`

	// Headers overrides the four column labels of the workbook
	Headers []string `yaml:"headers"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		LogDir:          ".txtmerge/logs",
		Extensions:      []string{".txt"},
		Pace:            10 * time.Millisecond,
		OutputDir:       "processing-results",
		OutputPrefix:    "merged-data",
		OpenAfterExport: true,
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pace is a string here so that "250ms" style values parse
	type yamlConfig struct {
		LogLevel        string        `yaml:"log_level"`
		LogDir          string        `yaml:"log_dir"`
		Extensions      []string      `yaml:"extensions"`
		ExcludeDirs     []string      `yaml:"exclude_dirs"`
		SkipHidden      bool          `yaml:"skip_hidden"`
		Pace            string        `yaml:"pace"`
		OutputDir       string        `yaml:"output_dir"`
		OutputPrefix    string        `yaml:"output_prefix"`
		OpenAfterExport bool          `yaml:"open_after_export"`
		Headers         []string      `yaml:"headers"`
		History         HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if len(yamlCfg.Extensions) > 0 {
		cfg.Extensions = yamlCfg.Extensions
	}
	if len(yamlCfg.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if yamlCfg.SkipHidden {
		cfg.SkipHidden = true
	}
	if yamlCfg.Pace != "" {
		pace, err := time.ParseDuration(yamlCfg.Pace)
		if err != nil {
			return nil, fmt.Errorf("invalid pace format %q: %w", yamlCfg.Pace, err)
		}
		cfg.Pace = pace
	}
	if yamlCfg.OutputDir != "" {
		cfg.OutputDir = yamlCfg.OutputDir
	}
	if yamlCfg.OutputPrefix != "" {
		cfg.OutputPrefix = yamlCfg.OutputPrefix
	}
	if len(yamlCfg.Headers) > 0 {
		cfg.Headers = yamlCfg.Headers
	}

	// Booleans that default to true only change when the key is present
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["open_after_export"]; exists {
			cfg.OpenAfterExport = yamlCfg.OpenAfterExport
		}
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .txtmerge/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, HomeDirName, ConfigFileName))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, pace *time.Duration, outputDir *string, openAfterExport *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if pace != nil {
		c.Pace = *pace
	}
	if outputDir != nil {
		c.OutputDir = *outputDir
	}
	if openAfterExport != nil {
		c.OpenAfterExport = *openAfterExport
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Pace < 0 {
		return fmt.Errorf("pace must be >= 0, got %v", c.Pace)
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions cannot be empty")
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			return fmt.Errorf("invalid extension %q", ext)
		}
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if strings.TrimSpace(c.OutputPrefix) == "" || strings.ContainsAny(c.OutputPrefix, `/\`) {
		return fmt.Errorf("invalid output_prefix %q", c.OutputPrefix)
	}

	if len(c.Headers) != 0 && len(c.Headers) != 4 {
		return fmt.Errorf("headers must list exactly 4 labels, got %d", len(c.Headers))
	}

	return nil
}
