package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		solo bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a thonkybot workspace",
		Long: `Initialize a new thonkybot workspace: config files, data directory and
database schema.

The --solo flag initializes a standalone workspace backed by a local SQLite
file, suitable for single-machine or development use. Without it, config.json
is written as a skeleton pointing at a Postgres server and migrations are left
for "thonkybot migrate" once credentials are filled in.`,
		Example: `  # Initialize a standalone SQLite workspace
  thonkybot init --solo

  # Initialize a Postgres workspace skeleton
  thonkybot init -c /etc/thonkybot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().
				Bool("solo", solo).
				Str("config-dir", configDir).
				Msg("Initializing workspace")

			ctx := cmd.Context()

			dataDir := filepath.Join(configDir, "data")
			if err := os.MkdirAll(dataDir, 0700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dataDir, err)
			}
			fmt.Printf("✓ Created directory: %s\n", dataDir)

			credsPath := credentialsPath()
			if _, err := os.Stat(credsPath); err == nil {
				return fmt.Errorf("refusing to overwrite existing %s", credsPath)
			}

			var credsContent string
			if solo {
				dbPath := filepath.Join(dataDir, "thonky.db")
				credsContent = fmt.Sprintf(`{
    "db_driver": "sqlite",
    "db_path": %q
}
`, dbPath)
			} else {
				credsContent = `{
    "db_driver": "postgres",
    "db_user": "thonky",
    "db_pw": "CHANGE_ME",
    "db_host": "localhost",
    "db_name": "thonkydb"
}
`
			}

			if err := os.WriteFile(credsPath, []byte(credsContent), 0600); err != nil {
				return fmt.Errorf("failed to write credentials file: %w", err)
			}
			fmt.Printf("✓ Created credentials file: %s\n", credsPath)

			tokens := tokensPath()
			if _, err := os.Stat(tokens); os.IsNotExist(err) {
				tokenContent := `tokens:
  main_token: CHANGE_ME
  test_token: ""
`
				if err := os.WriteFile(tokens, []byte(tokenContent), 0600); err != nil {
					return fmt.Errorf("failed to write token file: %w", err)
				}
				fmt.Printf("✓ Created token file: %s\n", tokens)
			}

			if solo {
				s, err := openStore(ctx)
				if err != nil {
					return fmt.Errorf("failed to open store: %w", err)
				}
				defer s.Close()

				if err := s.Migrate(ctx); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				fmt.Println("✓ Initialized SQLite database")

				// Seed the template row new servers and teams copy from.
				if err := s.Add(ctx, "server_config", 0, map[string]any{"prefix": "!"}); err != nil {
					return fmt.Errorf("failed to seed template config: %w", err)
				}
				fmt.Println("✓ Seeded template config row")
			} else {
				fmt.Println("\nEdit the credentials file, then run: thonkybot migrate")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&solo, "solo", false, "standalone SQLite workspace")

	return cmd
}
