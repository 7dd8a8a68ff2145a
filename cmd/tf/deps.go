package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/store"
)

var depsCmd = &cobra.Command{
	Use:     "deps <sprint-id|ticket-id>",
	Short:   "Show blocking and dependency pairs of a sprint or a ticket",
	GroupID: "inspect",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		mem, err := openDataset(context.Background(), cmd)
		if err != nil {
			return err
		}

		if _, ok := mem.Sprint(id); ok {
			deps := mem.SprintDependencies(id)
			if jsonOutput {
				return printJSON(os.Stdout, deps)
			}
			printSprintDependencies(os.Stdout, id, deps)
			return nil
		}

		deps, err := mem.TicketDependencies(id)
		if err != nil {
			return fmt.Errorf("no sprint or ticket %s: %w", id, store.ErrNotFound)
		}
		if jsonOutput {
			return printJSON(os.Stdout, deps)
		}
		printTicketDependencies(os.Stdout, id, deps)
		return nil
	},
}

func init() {
	addSourceFlags(depsCmd)
}
