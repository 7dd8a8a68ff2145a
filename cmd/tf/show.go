package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/store"
)

var showCmd = &cobra.Command{
	Use:     "show <ticket-id>",
	Short:   "Show a ticket and its relationships",
	GroupID: "inspect",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := openDataset(context.Background(), cmd)
		if err != nil {
			return err
		}
		t, ok := mem.Ticket(args[0])
		if !ok {
			return fmt.Errorf("ticket %s: %w", args[0], store.ErrNotFound)
		}
		rels, err := mem.TicketRelationships(t.ID)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(os.Stdout, map[string]any{"ticket": t, "relationships": rels})
		}
		printTicket(os.Stdout, t)
		printRelationships(os.Stdout, rels)
		return nil
	},
}

func init() {
	addSourceFlags(showCmd)
}
