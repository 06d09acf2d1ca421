package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dochub/dochub/internal/config"
	"github.com/dochub/dochub/internal/engine"
	"github.com/dochub/dochub/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "dochub",
	Short: "DocHub - dynamic roster tables for document generation",
	Long: `DocHub turns uploaded employee rosters into PostgreSQL tables whose
schemas are inferred at runtime. Each letter type gets its own table,
replaced on every upload, and read back page by page for letter
generation.`,
	SilenceUsage: true,
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.dochub/dochub.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// connect loads the config, sets up logging and returns a connected engine.
// The caller owns the engine and must Close it.
func connect(ctx context.Context) (*engine.Engine, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.Setup(level, cfg.Logging.Directory)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}

	eng := engine.New(cfg, logger)
	if err := eng.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return eng, logger, nil
}
