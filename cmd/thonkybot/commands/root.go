package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thonkybot/thonkybot/pkg/config"
	"github.com/thonkybot/thonkybot/pkg/store"
)

var (
	// Global flags
	configDir string
	verbose   bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "thonkybot",
		Short: "Thonkybot - team scheduling bot",
		Long: `Thonkybot is a Discord team scheduling bot. This binary runs the bot
process and provides admin commands over its database: per-server config,
team config, player availability and the sheet cache.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", ".", "directory holding config.json and config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newServerCommand())

	return rootCmd
}

func credentialsPath() string {
	return filepath.Join(configDir, "config.json")
}

func tokensPath() string {
	return filepath.Join(configDir, "config.yaml")
}

// openStore loads the credentials file and opens the row store.
func openStore(ctx context.Context) (*store.RowStore, error) {
	creds, err := config.LoadCredentials(credentialsPath())
	if err != nil {
		return nil, err
	}

	s, err := store.New(store.Config{
		Driver:   creds.Driver,
		Host:     creds.Host,
		User:     creds.User,
		Password: creds.Password,
		Database: creds.Database,
		Path:     creds.Path,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
