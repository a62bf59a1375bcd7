package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sovtools/sovgen/internal/config"
	"github.com/sovtools/sovgen/internal/mcp"
	"github.com/sovtools/sovgen/internal/sheet"
	"github.com/sovtools/sovgen/internal/sov"
	"github.com/sovtools/sovgen/internal/store"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. Output always goes to stderr;
// in stdio mode stdout carries the MCP protocol.
func setupLogging(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

// runGenerate executes the one-shot pipeline: parse every variant,
// reconcile, write the workbook and the optional entry database.
func runGenerate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	inputs, err := cfg.ParseSheets()
	if err != nil {
		return err
	}

	parser := sov.NewService(cfg.Options(), log)
	variants, err := parser.ParseAll(ctx, inputs)
	if err != nil {
		return err
	}

	parts := sov.Merge(variants)
	log.Info().Int("variants", len(variants)).Int("parts", len(parts)).Msg("reconciled variants")

	if err := sheet.NewRenderer(log).Render(variants, parts, cfg.OutputPath); err != nil {
		return err
	}

	if cfg.DBPath != "" {
		if err := store.NewExporter(log).Export(ctx, cfg.DBPath, variants); err != nil {
			return err
		}
	}

	if cfg.OpenAfter {
		if err := openFile(cfg.OutputPath); err != nil {
			log.Warn().Err(err).Msg("could not open workbook")
		}
	}
	return nil
}

// openFile opens a path with the platform's default application.
func openFile(path string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Start()
	case "darwin":
		return exec.Command("open", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}

// runStdio runs the MCP server until the parent closes stdin or a
// shutdown signal arrives.
func runStdio(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, log zerolog.Logger) error {
	parser := sov.NewService(cfg.Options(), log)
	server, err := mcp.NewServer(cfg, parser, log)
	if err != nil {
		return fmt.Errorf("create MCP server: %w", err)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		return <-serverErrCh
	case err := <-serverErrCh:
		return err
	}
}

// isVersionArg reports whether an argument requests version output.
func isVersionArg(arg string) bool {
	return arg == "-version" || arg == "--version" || arg == "-v"
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if isVersionArg(arg) {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		pflagUsageHint()
		os.Exit(1)
	}

	log := setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Debug().Str("config", cfg.String()).Msg("starting")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsStdioMode() {
		err = runStdio(ctx, cancel, cfg, log)
	} else {
		err = runGenerate(ctx, cfg, log)
	}
	if err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func pflagUsageHint() {
	fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", os.Args[0])
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("sovgen - Spreadsheet of Variants generator\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
