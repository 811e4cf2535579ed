package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply any pending schema migrations to the SQLite database.

The serve, scrape, and seed commands run migrations automatically;
this command exists for init containers and deploy hooks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Printf("Database %s is up to date\n", cfg.Store.Path)
			return nil
		},
	}

	return cmd
}
