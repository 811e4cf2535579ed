package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nolanlove/skiapp/pkg/geocode"
)

func newGeocodeCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "geocode <location>",
		Short: "Geocode a location string",
		Long: `Resolve a zip code or "City, State" string to coordinates, using
the same geocoder and cache as the search API.`,
		Example: `  skispot geocode 80302
  skispot geocode "Salt Lake City, UT"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			location := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, metrics, err := buildTelemetry(cfg)
			if err != nil {
				return err
			}

			client, err := geocode.NewClient(geocode.ClientConfig{
				BaseURL:   cfg.Geocoder.BaseURL,
				UserAgent: cfg.Geocoder.UserAgent,
				Timeout:   cfg.Geocoder.Timeout.Std(),
			}, logger, metrics)
			if err != nil {
				return err
			}

			var geocoder geocode.Geocoder = client
			if !noCache {
				store, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				geocoder = geocode.NewCachedGeocoder(client, store, cfg.Geocoder.CacheTTL.Std(), logger, metrics)
			}

			point, err := geocoder.Geocode(ctx, location)
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(point)
			}
			fmt.Printf("%s -> %.4f, %.4f\n", location, point.Latitude, point.Longitude)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the geocode cache")

	return cmd
}
