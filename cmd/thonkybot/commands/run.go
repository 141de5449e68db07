package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thonkybot/thonkybot/pkg/config"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run [test]",
		Short: "Run the bot process",
		Long: `Run the bot process. By default the main bot token is used; passing the
positional argument "test" selects the test token instead.

The Discord client attaches here; this command owns token selection, the
database connection and the config change watch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mode := ""
			if len(args) == 1 {
				mode = args[0]
			}

			tokens, err := config.LoadTokens(tokensPath())
			if err != nil {
				return fmt.Errorf("failed to load tokens: %w", err)
			}

			token, err := tokens.SelectToken(mode)
			if err != nil {
				return err
			}

			if mode == "test" {
				log.Info().Msg("Starting bot with test token")
			} else {
				log.Info().Msg("Starting bot with main token")
			}

			s, err := openStore(ctx)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer s.Close()

			if err := s.HealthCheck(ctx); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			err = config.Watch(ctx, log.Logger, credentialsPath(), func(path string) {
				log.Warn().Str("file", path).Msg("Credentials changed on disk; restart to apply")
			})
			if err != nil {
				log.Warn().Err(err).Msg("Config watch unavailable")
			}

			_ = token // handed to the Discord client when it attaches

			log.Info().Str("dialect", string(s.Dialect())).Msg("Bot ready")
			<-ctx.Done()
			log.Info().Msg("Bot stopped")
			return nil
		},
	}
}
