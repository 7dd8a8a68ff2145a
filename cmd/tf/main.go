package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/ui"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "tf",
	Short:        "Generate synthetic issue-tracker datasets",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if noColor {
			ui.ForceNoColor()
		} else {
			ui.Init()
		}

		var err error
		cfg, err = config.Load()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "generate", Title: "Generating:"},
		&cobra.Group{ID: "inspect", Title: "Inspecting:"},
	)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(blockedCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
