package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/pf2-flat-check/internal/gameserver"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change world settings on a running flatcheckd",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	var server serverFlags
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print a world setting's effective value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), &server, func(ctx context.Context, c *gameserver.FlatCheckClient) error {
				v, err := c.GetSetting(ctx, args[0])
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", args[0], v)
				return nil
			})
		},
	}
	server.bind(cmd)
	return cmd
}

func newSettingsSetCmd() *cobra.Command {
	var server serverFlags
	cmd := &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Change a world setting",
		Example: "  flatcheck settings set " + gameserver.SettingHideRollValue + " true",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("value %q: must be true or false", args[1])
			}
			return withClient(cmd.Context(), &server, func(ctx context.Context, c *gameserver.FlatCheckClient) error {
				if err := c.SetSetting(ctx, args[0], v); err != nil {
					return fmt.Errorf("setting %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", args[0], v)
				return nil
			})
		},
	}
	server.bind(cmd)
	return cmd
}

// withClient dials flatcheckd and runs fn with a per-call timeout.
func withClient(ctx context.Context, server *serverFlags, fn func(context.Context, *gameserver.FlatCheckClient) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := server.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	cctx, cancel := context.WithTimeout(ctx, server.timeout)
	defer cancel()
	return fn(cctx, gameserver.NewFlatCheckClient(conn))
}
