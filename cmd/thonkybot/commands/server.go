package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thonkybot/thonkybot/pkg/botdata"
)

func newServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Inspect and edit per-server config",
	}

	cmd.AddCommand(newServerGetCommand())
	cmd.AddCommand(newServerSetCommand())
	cmd.AddCommand(newServerAddCommand())

	return cmd
}

func newServerGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <server-id>",
		Short: "Print a server's config row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			serverID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid server id: %q", args[0])
			}

			s, err := openStore(ctx)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer s.Close()

			row, err := botdata.New(s).ServerConfig(ctx, serverID)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("no config for server %d", serverID)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(row)
		},
	}
}

func newServerSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <server-id> <key> <value>",
		Short: "Set one config field of a server",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			serverID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid server id: %q", args[0])
			}

			s, err := openStore(ctx)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer s.Close()

			if err := botdata.New(s).UpdateServerConfig(ctx, serverID, args[1], args[2]); err != nil {
				return err
			}

			log.Info().
				Int64("server", serverID).
				Str("key", args[1]).
				Msg("Server config updated")
			return nil
		},
	}
}

func newServerAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <server-id>",
		Short: "Create a server's config row from the template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			serverID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid server id: %q", args[0])
			}

			s, err := openStore(ctx)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer s.Close()

			if err := botdata.New(s).AddServerConfig(ctx, serverID); err != nil {
				return err
			}

			log.Info().Int64("server", serverID).Msg("Server config created")
			return nil
		},
	}
}
