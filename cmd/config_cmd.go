package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dochub/dochub/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View, validate, and initialize the DocHub configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Database:\n")
		fmt.Printf("    Host:           %s\n", cfg.Database.Host)
		fmt.Printf("    Port:           %d\n", cfg.Database.Port)
		fmt.Printf("    Database:       %s\n", cfg.Database.Database)
		fmt.Printf("    Schema:         %s\n", cfg.Database.Schema)
		fmt.Printf("    Username:       %s\n", cfg.Database.Username)
		fmt.Printf("    Password:       %s\n", maskSecret(cfg.Database.Password))
		fmt.Printf("    SSL:            %t\n", cfg.Database.SSL)
		fmt.Printf("    Max Conns:      %d\n", cfg.Database.MaxConnections)
		fmt.Println()
		fmt.Printf("  Server:\n")
		fmt.Printf("    Port:           %d\n", cfg.Server.Port)
		fmt.Println()
		fmt.Printf("  Logging:\n")
		fmt.Printf("    Level:          %s\n", cfg.Logging.Level)
		fmt.Printf("    Directory:      %s\n", cfg.Logging.Directory)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}

		var errors []string

		if cfg.Database.Host == "" {
			errors = append(errors, "database.host is required")
		}
		if cfg.Database.Database == "" {
			errors = append(errors, "database.database is required")
		}
		if cfg.Database.Username == "" {
			errors = append(errors, "database.username is required")
		}

		if len(errors) > 0 {
			fmt.Println("Validation errors:")
			for _, e := range errors {
				fmt.Printf("  - %s\n", e)
			}
			return fmt.Errorf("%d validation error(s)", len(errors))
		}

		fmt.Println("Configuration is valid.")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.ExpandHome(config.DefaultPath)
		}

		cfg := &config.Config{
			Version: config.CurrentVersion,
			Database: config.DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "dochub",
				Schema:   "public",
				Username: "dochub",
				Password: "${ENV:DOCHUB_DB_PASSWORD}",
			},
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Wrote starter config to %s\n", path)
		fmt.Println("Edit the database settings, then run 'dochub config validate'.")
		return nil
	},
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if strings.HasPrefix(s, "${") {
		return s // unresolved reference, safe to show
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
