package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcharvin/issuevault/pkg/config"
)

func createInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a starter configuration file with default values. Edit it to set
your vault path and tracker connection, then export the API token in the
environment variable named by token_env.

Examples:
  issuevault init
  issuevault init -c /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}

			manager := config.NewManager(path)
			if _, err := manager.GetConfig(); err == nil && !force {
				return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
			}

			if err := manager.SaveConfig(manager.DefaultConfig()); err != nil {
				return err
			}

			fmt.Printf("Configuration written to %s\n", path)
			return nil
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	return initCmd
}
