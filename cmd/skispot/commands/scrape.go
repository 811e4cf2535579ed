package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nolanlove/skiapp/pkg/scraper"
)

func newScrapeCommand() *cobra.Command {
	var (
		states []string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape snow reports into the local database",
		Long: `Scrape US snow reports and store the results.

By default the scrape is skipped when the cache is still fresh; use
--force to scrape regardless.`,
		Example: `  # Scrape everything if stale
  skispot scrape

  # Force a scrape of two states
  skispot scrape --force --state Colorado --state Utah`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, metrics, err := buildTelemetry(cfg)
			if err != nil {
				return err
			}
			tracer, err := buildTracer(cfg)
			if err != nil {
				return err
			}
			defer tracer.Shutdown(context.Background())
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			scr := scraper.New(scraper.Config{
				BaseURL:        cfg.Scraper.BaseURL,
				UserAgent:      cfg.Scraper.UserAgent,
				Timeout:        cfg.Scraper.Timeout.Std(),
				Concurrency:    cfg.Scraper.Concurrency,
				CacheTTL:       cfg.Scraper.CacheTTL.Std(),
				FreshThreshold: cfg.Scraper.FreshThreshold,
			}, store, logger, metrics, tracer)

			if !force && len(states) == 0 {
				resorts, err := scr.Refresh(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Cache holds %d resorts\n", len(resorts))
				return nil
			}

			run, err := scr.ScrapeAll(ctx, states)
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(run)
			}
			fmt.Printf("Scrape %s: %d states, %d resorts (%s)\n",
				run.Status, run.StatesScraped, run.ResortsUpserted, run.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&states, "state", nil, "state to scrape (repeatable, default all)")
	cmd.Flags().BoolVar(&force, "force", false, "scrape even if the cache is fresh")

	return cmd
}
