package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/pf2-flat-check/internal/gameserver"
)

func newMessagesCmd() *cobra.Command {
	var (
		server serverFlags
		limit  int
		html   bool
	)
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List the most recent flat check cards posted by flatcheckd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), &server, func(ctx context.Context, c *gameserver.FlatCheckClient) error {
				msgs, err := c.ListMessages(ctx, limit)
				if err != nil {
					return fmt.Errorf("listing messages: %w", err)
				}
				w := cmd.OutOrStdout()
				for _, m := range msgs {
					fmt.Fprintf(w, "%s %s %s %s", m.CreatedAt.Format("2006-01-02 15:04:05"), m.ID, m.Speaker, m.Style)
					if m.Blind {
						fmt.Fprintf(w, " (blind, whispered to %s)", strings.Join(m.Whisper, ", "))
					}
					fmt.Fprintln(w)
					if html {
						fmt.Fprintln(w, m.Content)
					}
				}
				return nil
			})
		},
	}
	server.bind(cmd)
	cmd.Flags().IntVar(&limit, "limit", 20, fmt.Sprintf("number of cards, 1 to %d", gameserver.MaxRecentMessages))
	cmd.Flags().BoolVar(&html, "html", false, "also print each card's HTML")
	return cmd
}
