package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/export"
	"github.com/alfredjeanlab/ticketforge/internal/store"
	"github.com/alfredjeanlab/ticketforge/internal/store/postgres"
)

// addSourceFlags registers the flags that select which dataset a read
// command inspects.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "exported dataset directory (default: output dir)")
	cmd.Flags().String("run", "", "read this run from Postgres instead of a directory")
}

// openDataset loads the dataset selected by the source flags and indexes
// it for queries.
func openDataset(ctx context.Context, cmd *cobra.Command) (*store.Memory, error) {
	runID, _ := cmd.Flags().GetString("run")
	var (
		ds  *store.Dataset
		err error
	)
	if runID != "" {
		if cfg.DatabaseURL == "" {
			return nil, errors.New("--run requires TICKETFORGE_DATABASE_URL")
		}
		pg, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pg.Close()
		ds, err = pg.Load(ctx, runID)
		if err != nil {
			return nil, err
		}
	} else {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.OutputDir
		}
		ds, err = export.Load(dir)
		if err != nil {
			return nil, err
		}
	}
	return store.FromDataset(ds)
}
