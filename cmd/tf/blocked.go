package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var blockedCmd = &cobra.Command{
	Use:     "blocked",
	Short:   "Show blocked tickets",
	GroupID: "inspect",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sprintID, _ := cmd.Flags().GetString("sprint")

		mem, err := openDataset(context.Background(), cmd)
		if err != nil {
			return err
		}
		tickets := mem.BlockedTickets(sprintID)

		if jsonOutput {
			return printJSON(os.Stdout, tickets)
		}
		printBlockedTable(os.Stdout, tickets)
		return nil
	},
}

func init() {
	addSourceFlags(blockedCmd)
	blockedCmd.Flags().String("sprint", "", "only tickets in this sprint")
}
