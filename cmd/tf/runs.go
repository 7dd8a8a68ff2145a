package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/store/postgres"
)

var runsCmd = &cobra.Command{
	Use:     "runs",
	Short:   "List runs stored in Postgres",
	GroupID: "inspect",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("TICKETFORGE_DATABASE_URL is not set")
		}
		pg, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		runs, err := pg.Runs(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, runs)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tGENERATED\tTICKETS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\n", r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05"), r.Tickets)
		}
		w.Flush()
		return nil
	},
}
