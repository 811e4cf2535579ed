package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skispot",
		Short: "SkiSpot - ski resort finder",
		Long: `SkiSpot finds the best ski resort within driving distance of a
location, balancing snow conditions against drive time.

It scrapes US snow reports, caches them in SQLite, geocodes user
locations via Nominatim, and computes driving routes via OSRM.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newScrapeCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newGeocodeCommand())

	return rootCmd
}
