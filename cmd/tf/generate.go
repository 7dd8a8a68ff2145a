package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/content"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/export"
	"github.com/alfredjeanlab/ticketforge/internal/generator"
	"github.com/alfredjeanlab/ticketforge/internal/store"
	"github.com/alfredjeanlab/ticketforge/internal/store/postgres"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Short:   "Generate a dataset and export it",
	GroupID: "generate",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyGenerateFlags(cmd, cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := runGenerate(ctx, cfg)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(os.Stdout, res.Dataset)
		}
		printSummary(os.Stdout, res)
		return nil
	},
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("profile", "", "company profile TOML file (default: built-in profile)")
	cmd.Flags().String("out", "", "output directory (default $TICKETFORGE_OUTPUT_DIR or generated_data)")
	cmd.Flags().Int64("seed", 0, "random seed (default: time based)")
	cmd.Flags().Int("sprints", 0, "sprints per team, the last one current (default 3)")
	cmd.Flags().String("provider", "", "content provider: template or openai")
	cmd.Flags().String("initiative", "", "tie every epic to this profile initiative")
	cmd.Flags().Bool("no-db", false, "skip the Postgres sink even if TICKETFORGE_DATABASE_URL is set")
}

// applyGenerateFlags overrides environment configuration with the flags
// the user set explicitly.
func applyGenerateFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	if f.Changed("profile") {
		c.ProfilePath, _ = f.GetString("profile")
	}
	if f.Changed("out") {
		c.OutputDir, _ = f.GetString("out")
	}
	if f.Changed("seed") {
		c.Seed, _ = f.GetInt64("seed")
		c.SeedSet = true
	}
	if f.Changed("sprints") {
		c.Sprints, _ = f.GetInt("sprints")
		if c.Sprints < 1 {
			return fmt.Errorf("--sprints must be at least 1, got %d", c.Sprints)
		}
	}
	if f.Changed("provider") {
		c.ContentProvider, _ = f.GetString("provider")
	}
	if f.Changed("initiative") {
		c.Initiative, _ = f.GetString("initiative")
	}
	if noDB, _ := f.GetBool("no-db"); noDB {
		c.DatabaseURL = ""
	}
	return c.Validate()
}

// generateResult is what one generate invocation produced.
type generateResult struct {
	Dataset *store.Dataset
	Memory  *store.Memory
	Seed    int64
	Out     string
	S3      string
	Saved   bool
}

// runGenerate runs the generator with the configured collaborators, then
// exports the dataset and optionally saves it to Postgres.
func runGenerate(ctx context.Context, c *config.Config) (*generateResult, error) {
	profile := config.DefaultProfile()
	if c.ProfilePath != "" {
		p, err := config.LoadProfile(c.ProfilePath)
		if err != nil {
			return nil, err
		}
		profile = p
	}

	seed := c.Seed
	if !c.SeedSet {
		seed = time.Now().UnixNano()
	}
	logger.Info("generating", "company", profile.Company, "seed", seed, "sprints_per_team", c.Sprints, "provider", c.ContentProvider)

	provider, err := newProvider(c, uint64(seed))
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher
	if c.NATSURL != "" {
		pub, err := events.NewNATSPublisher(c.NATSURL)
		if err != nil {
			return nil, err
		}
		publisher = pub
		logger.Info("events enabled", "nats_url", c.NATSURL)
	} else {
		publisher = &events.NoopPublisher{}
		logger.Debug("events disabled (TICKETFORGE_NATS_URL not set)")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("closing event publisher", "err", err)
		}
	}()

	g, err := generator.New(profile, generator.Options{
		Seed:       uint64(seed),
		Content:    provider,
		Publisher:  publisher,
		Logger:     logger,
		Initiative: c.Initiative,
	})
	if err != nil {
		return nil, err
	}

	ds, err := g.Run(ctx, generator.RunOptions{SprintsPerTeam: c.Sprints})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	res := &generateResult{Dataset: ds, Memory: g.Store(), Seed: seed, Out: c.OutputDir}

	dests := []export.Destination{export.DirDestination{Dir: c.OutputDir}}
	if c.S3Bucket != "" {
		prefix := path.Join(c.S3Prefix, ds.RunID)
		s3dest, err := export.NewS3Destination(ctx, c.S3Bucket, prefix, c.S3Region, c.S3Endpoint)
		if err != nil {
			return nil, err
		}
		dests = append(dests, s3dest)
		res.S3 = "s3://" + path.Join(c.S3Bucket, prefix)
	}
	if err := export.NewExporter(logger, dests...).Export(ctx, ds); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	if c.DatabaseURL != "" {
		if err := saveToPostgres(ctx, c.DatabaseURL, ds); err != nil {
			return nil, err
		}
		res.Saved = true
	}
	return res, nil
}

func newProvider(c *config.Config, seed uint64) (content.Provider, error) {
	var p content.Provider
	switch c.ContentProvider {
	case config.ProviderTemplate:
		p = content.NewTemplate(seed)
	case config.ProviderOpenAI:
		p = content.NewOpenAI(&http.Client{}, c.OpenAIBaseURL, c.OpenAIKey, c.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown content provider %q", c.ContentProvider)
	}
	return content.WithRetry(p, c.ContentRetries, c.ContentTimeout, logger), nil
}

func saveToPostgres(ctx context.Context, url string, ds *store.Dataset) error {
	pg, err := postgres.New(url)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Save(ctx, ds); err != nil {
		return fmt.Errorf("save to postgres: %w", err)
	}
	logger.Info("dataset saved to postgres", "run_id", ds.RunID, "tickets", len(ds.Tickets))
	return nil
}
