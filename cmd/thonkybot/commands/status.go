package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openStore(ctx)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer s.Close()

			if err := s.HealthCheck(ctx); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			fmt.Printf("✓ Database reachable (%s)\n", s.Dialect())
			return nil
		},
	}
}
