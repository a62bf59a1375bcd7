package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sovtools/sovgen/internal/sov"
)

const (
	// Mode constants
	ModeGenerate = "generate"
	ModeStdio    = "stdio"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the SOV generator.
type Config struct {
	// Mode selects between one-shot generation and the MCP stdio server.
	Mode string

	// Generate mode inputs: one "LABEL=PATH" spec per variant, in
	// output column order.
	Sheets []string

	// Output paths
	OutputPath string // combined workbook (xlsx)
	DBPath     string // optional SQLite export

	// Extraction behavior
	StrictHeader bool
	ZeroQuantity bool
	OpenAfter    bool

	// Stdio mode document directory
	Directory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:        ModeGenerate,
		Directory:   currentDir,
		Version:     "1.0.0",
		ServerName:  "sovgen",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("SOVGEN")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("output", cfg.OutputPath)
	viper.SetDefault("db", cfg.DBPath)
	viper.SetDefault("dir", cfg.Directory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("strict-header", cfg.StrictHeader)
	viper.SetDefault("zero-quantity", cfg.ZeroQuantity)
	viper.SetDefault("open", cfg.OpenAfter)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.StringArrayP("sheet", "s", nil, "Variant input as LABEL=PATH (repeatable, order fixes columns)")
	pflag.StringP("output", "o", cfg.OutputPath, "Output xlsx path (generate mode)")
	pflag.String("db", cfg.DBPath, "Optional SQLite database path for entry export")
	pflag.String("mode", cfg.Mode, "Run mode: 'generate' for one-shot output, 'stdio' for MCP standard I/O")
	pflag.String("dir", cfg.Directory, "Directory containing variant PDF files (stdio mode)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Bool("strict-header", cfg.StrictHeader, "Require a quantity column when detecting table headers")
	pflag.Bool("zero-quantity", cfg.ZeroQuantity, "Treat unparsable quantities as zero instead of absent")
	pflag.Bool("open", cfg.OpenAfter, "Open the workbook after generation")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"sheet", "output", "db", "mode", "dir", "loglevel",
		"maxfilesize", "strict-header", "zero-quantity", "open",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nsovgen - combined Spreadsheet of Variants generator\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -s BASE=base.pdf -s EU=eu.pdf -o combined.xlsx   # two variants\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -s A=a.pdf -o out.xlsx --db entries.db           # with SQLite export\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/pdfs                 # MCP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SOVGEN_MODE        Run mode\n")
		fmt.Fprintf(os.Stderr, "  SOVGEN_OUTPUT      Output workbook path\n")
		fmt.Fprintf(os.Stderr, "  SOVGEN_DB          SQLite export path\n")
		fmt.Fprintf(os.Stderr, "  SOVGEN_DIR         PDF directory (stdio mode)\n")
		fmt.Fprintf(os.Stderr, "  SOVGEN_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  SOVGEN_MAXFILESIZE Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Sheets = viper.GetStringSlice("sheet")
	cfg.OutputPath = viper.GetString("output")
	cfg.DBPath = viper.GetString("db")
	cfg.Directory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.StrictHeader = viper.GetBool("strict-header")
	cfg.ZeroQuantity = viper.GetBool("zero-quantity")
	cfg.OpenAfter = viper.GetBool("open")
}

// ParseSheets converts the "LABEL=PATH" sheet specs into parser inputs.
func (c *Config) ParseSheets() ([]sov.Input, error) {
	inputs := make([]sov.Input, 0, len(c.Sheets))
	seen := make(map[string]bool)
	for _, spec := range c.Sheets {
		label, path, ok := strings.Cut(spec, "=")
		label = strings.TrimSpace(label)
		path = strings.TrimSpace(path)
		if !ok || label == "" || path == "" {
			return nil, fmt.Errorf("invalid sheet spec %q (want LABEL=PATH)", spec)
		}
		if seen[label] {
			return nil, fmt.Errorf("duplicate sheet label %q", label)
		}
		seen[label] = true
		inputs = append(inputs, sov.Input{Label: label, Path: path})
	}
	return inputs, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeGenerate && c.Mode != ModeStdio {
		return errors.New("mode must be either 'generate' or 'stdio'")
	}

	if c.Mode == ModeGenerate {
		if len(c.Sheets) == 0 {
			return errors.New("generate mode needs at least one --sheet LABEL=PATH")
		}
		if c.OutputPath == "" {
			return errors.New("generate mode needs --output")
		}
		if _, err := c.ParseSheets(); err != nil {
			return err
		}
	}

	if c.Mode == ModeStdio {
		if c.Directory == "" {
			return errors.New("PDF directory cannot be empty")
		}
		if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
			if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create PDF directory %s: %w", c.Directory, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access PDF directory %s: %w", c.Directory, err)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Options returns the extraction options derived from the configuration.
func (c *Config) Options() sov.Options {
	return sov.Options{
		StrictHeader: c.StrictHeader,
		ZeroQuantity: c.ZeroQuantity,
		MaxFileSize:  c.MaxFileSize,
	}
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Sheets: %d, Output: %s, DB: %s, Directory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, len(c.Sheets), c.OutputPath, c.DBPath, c.Directory, c.LogLevel, c.MaxFileSize)
}

// IsGenerateMode returns true when running one-shot generation
func (c *Config) IsGenerateMode() bool {
	return c.Mode == ModeGenerate
}

// IsStdioMode returns true when running as an MCP stdio server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
