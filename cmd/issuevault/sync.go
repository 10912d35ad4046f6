package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcharvin/issuevault/pkg/sync"
)

func createSyncCmd() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle from the tracker into the vault",
		Long: `Fetch issues relevant to you updated since the last successful sync,
mirror them as notes in the vault, update the activity digests and advance
the checkpoint.

Per-issue write failures are logged and retried on the next run; they do not
affect the exit code. Tracker query and checkpoint failures are fatal.

Examples:
  issuevault sync
  issuevault sync -c ~/.issuevault/config.yaml --log-file ~/.issuevault/sync.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			syncer, err := sync.NewSyncer(sync.NewSyncerParams{
				Config: cfg,
				Logger: buildLogger(),
			})
			if err != nil {
				return err
			}

			report, err := syncer.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			if !quiet {
				fmt.Println(report.Summary())
			}
			return nil
		},
	}

	return syncCmd
}
