package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tcharvin/issuevault/pkg/checkpoint"
	"github.com/tcharvin/issuevault/pkg/digest"
	"github.com/tcharvin/issuevault/pkg/fs"
)

func createStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current checkpoint and vault contents",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := loadConfig()
			filesystem := fs.NewFS()

			store := checkpoint.NewStore(filesystem, cfg.CheckpointPath())
			mark, exists, err := store.Load()
			if err != nil {
				return err
			}

			if exists {
				fmt.Printf("Last successful sync: %s\n", mark.Local().Format(time.RFC1123))
			} else {
				fmt.Println("No sync has completed yet.")
			}

			projects := 0
			if ok, _ := filesystem.IsDir(cfg.BasePath()); ok {
				entries, err := filesystem.ReadDir(cfg.BasePath())
				if err != nil {
					return err
				}
				for _, entry := range entries {
					if entry.IsDir() {
						projects++
					}
				}
			}
			fmt.Printf("Projects: %d\n", projects)

			notes, err := filesystem.Glob(filepath.Join(cfg.BasePath(), "*", "*.md"))
			if err != nil {
				return err
			}
			fmt.Printf("Issue notes: %d\n", len(notes))

			matches, err := filesystem.Glob(filepath.Join(cfg.DigestPath(), "*.md"))
			if err != nil {
				return err
			}
			daily := 0
			for _, m := range matches {
				if filepath.Base(m) != digest.IndexFilename {
					daily++
				}
			}
			fmt.Printf("Daily digests: %d\n", daily)

			return nil
		},
	}

	return statusCmd
}
