// Package main provides the command-line interface for the issuevault application.
package main

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tcharvin/issuevault/pkg/config"
	"github.com/tcharvin/issuevault/pkg/logger"
)

var (
	quiet      bool
	verbose    bool
	configPath string
	logFile    string
)

// loadConfig loads the configuration strictly, failing if not found.
func loadConfig() config.Config {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	manager := config.NewManager(path)
	cfg, err := manager.GetConfig()
	if err != nil {
		log.Fatalf("Configuration not found at %s. Run: issuevault init", path)
	}

	return cfg
}

// buildLogger returns the logger matching the global flags. Without
// --verbose only the end-of-run summary is printed; per-issue progress goes
// to the logger.
func buildLogger() logger.Logger {
	switch {
	case logFile != "":
		return logger.NewFileLogger(logFile)
	case quiet || !verbose:
		return logger.NewNoopLogger()
	default:
		return logger.NewDefaultLogger()
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "issuevault",
		Short: "Issuevault - Tracker to vault sync",
		Long: `A CLI tool that mirrors issues relevant to you from an issue tracker ` +
			`into a Markdown knowledge-base vault, with daily, weekly and monthly activity digests.`,
	}

	// Add global flags
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Specify a custom config file path")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this rotating file instead of stdout")

	// Add subcommands
	rootCmd.AddCommand(createSyncCmd(), createInitCmd(), createStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
