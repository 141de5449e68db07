package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openStore(ctx)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer s.Close()

			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			log.Info().Str("dialect", string(s.Dialect())).Msg("Migrations applied")
			return nil
		},
	}
}
