package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/config"
)

var profileCmd = &cobra.Command{
	Use:     "profile [file]",
	Short:   "Print the built-in company profile, or validate a profile file",
	GroupID: "generate",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := config.DefaultProfile()
		if len(args) == 1 {
			var err error
			if p, err = config.LoadProfile(args[0]); err != nil {
				return err
			}
		}
		if jsonOutput {
			return printJSON(os.Stdout, p)
		}
		return p.Encode(os.Stdout)
	},
}
