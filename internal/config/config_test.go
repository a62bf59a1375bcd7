package config

import (
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	if cfg.Mode != ModeGenerate {
		t.Errorf("Expected default mode to be 'generate', got '%s'", cfg.Mode)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.ServerName != "sovgen" {
		t.Errorf("Expected default server name to be 'sovgen', got '%s'", cfg.ServerName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if cfg.ZeroQuantity {
		t.Error("Expected zero-quantity to default to false")
	}

	// Test that the directory defaults to the current working directory
	currentDir, _ := os.Getwd()
	if cfg.Directory != currentDir {
		t.Errorf("Expected default directory to be '%s', got '%s'", currentDir, cfg.Directory)
	}
}

func validGenerateConfig() *Config {
	cfg := DefaultConfig()
	cfg.Sheets = []string{"BASE=base.pdf", "EU=eu.pdf"}
	cfg.OutputPath = "combined.xlsx"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid generate config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid stdio config",
			mutate: func(c *Config) {
				c.Mode = ModeStdio
				c.Sheets = nil
				c.OutputPath = ""
			},
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "http" },
			wantErr: "mode must be",
		},
		{
			name:    "generate without sheets",
			mutate:  func(c *Config) { c.Sheets = nil },
			wantErr: "at least one --sheet",
		},
		{
			name:    "generate without output",
			mutate:  func(c *Config) { c.OutputPath = "" },
			wantErr: "needs --output",
		},
		{
			name:    "malformed sheet spec",
			mutate:  func(c *Config) { c.Sheets = []string{"just-a-path.pdf"} },
			wantErr: "invalid sheet spec",
		},
		{
			name:    "duplicate sheet labels",
			mutate:  func(c *Config) { c.Sheets = []string{"A=a.pdf", "A=b.pdf"} },
			wantErr: "duplicate sheet label",
		},
		{
			name: "stdio with empty directory",
			mutate: func(c *Config) {
				c.Mode = ModeStdio
				c.Directory = ""
			},
			wantErr: "directory cannot be empty",
		},
		{
			name:    "non-positive max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "file size must be positive",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validGenerateConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got none", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateCreatesMissingDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeStdio
	cfg.Directory = t.TempDir() + "/pdfs"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(cfg.Directory); err != nil {
		t.Errorf("expected directory to be created: %v", err)
	}
}

func TestParseSheets(t *testing.T) {
	cfg := validGenerateConfig()
	inputs, err := cfg.ParseSheets()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(inputs))
	}
	if inputs[0].Label != "BASE" || inputs[0].Path != "base.pdf" {
		t.Errorf("unexpected first input: %+v", inputs[0])
	}
	if inputs[1].Label != "EU" || inputs[1].Path != "eu.pdf" {
		t.Errorf("unexpected second input: %+v", inputs[1])
	}

	// paths may contain '=' after the first separator
	cfg.Sheets = []string{"A=/tmp/with=sign.pdf"}
	inputs, err = cfg.ParseSheets()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inputs[0].Path != "/tmp/with=sign.pdf" {
		t.Errorf("unexpected path: %s", inputs[0].Path)
	}
}

func TestOptions(t *testing.T) {
	cfg := validGenerateConfig()
	cfg.StrictHeader = true
	cfg.ZeroQuantity = true
	cfg.MaxFileSize = 42

	opts := cfg.Options()
	if !opts.StrictHeader || !opts.ZeroQuantity || opts.MaxFileSize != 42 {
		t.Errorf("options do not mirror config: %+v", opts)
	}
}

func TestModeHelpers(t *testing.T) {
	cfg := validGenerateConfig()
	if !cfg.IsGenerateMode() || cfg.IsStdioMode() {
		t.Error("expected generate mode helpers to report generate")
	}

	cfg.Mode = ModeStdio
	if cfg.IsGenerateMode() || !cfg.IsStdioMode() {
		t.Error("expected stdio mode helpers to report stdio")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("expected IsDebug for debug level")
	}
}
