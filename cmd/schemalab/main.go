// Package main provides the schemalab binary entry point.
// Schemalab is a graph schema workbench: it compiles declarative
// schema text, analyzes the resulting graph, and executes
// natural-language queries against a synthetic dataset.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/c360studio/schemalab/insight/providers"

	"github.com/c360studio/schemalab/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "schemalab"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Graph schema workbench",
		Long: `Schemalab is a graph schema workbench.

It provides:
- Schema compilation from declarative YAML text
- Graph analysis (connectivity, degree centrality)
- Natural-language query execution over a synthetic dataset
- Optional LLM-generated insights on query results`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(schemaCmd())
	cmd.AddCommand(queryCmd())
	cmd.AddCommand(datasetCmd())
	cmd.AddCommand(serveCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadConfig loads layered configuration (defaults, user, project) or
// an explicit file when --config was given.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	loader := config.NewLoader(slog.Default())
	return loader.Load()
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║            Schemalab v" + Version + "                   ║")
	fmt.Println("║        Graph Schema Workbench                 ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}
