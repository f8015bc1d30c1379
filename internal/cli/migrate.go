package cli

import (
	"globetrotter/internal/infra/postgres"

	"github.com/spf13/cobra"
)

// newMigrateCmd applies the results ledger migrations.
func newMigrateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return postgres.Migrate(cmd.Context(), cfg.Postgres.URL)
		},
	}
}
