package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nolanlove/skiapp/pkg/scraper"
)

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with sample resort data",
		Long: `Seed the database with realistic sample data for well-known resorts.

Useful for development and for bootstrapping an environment where the
upstream snow reports are unreachable.`,
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

			scr := scraper.New(scraper.Config{}, store, logger, metrics, tracer)
			n, err := scr.SeedSamples(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Seeded %d sample resorts\n", n)
			return nil
		},
	}

	return cmd
}
