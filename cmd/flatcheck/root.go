package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pf2-flat-check/internal/config"
	"github.com/cory-johannsen/pf2-flat-check/internal/gameserver"
	"github.com/cory-johannsen/pf2-flat-check/internal/observability"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "flatcheck",
		Short:         "Replay PF2e flat checks for recorded scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newSceneCmd(opts), newRemoteCmd(opts), newSettingsCmd(), newMessagesCmd())
	return cmd
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	return observability.NewLogger(config.LoggingConfig{Level: o.logLevel, Format: "console"}, "flatcheck")
}

// printResult writes one line per event outcome.
func printResult(w io.Writer, eventID string, res *gameserver.CheckResult) {
	if res == nil {
		fmt.Fprintf(w, "%s: no flat check\n", eventID)
		return
	}
	var reasons []string
	if res.ActorCondition != "" {
		reasons = append(reasons, fmt.Sprintf("%s %s", res.ActorName, res.ActorCondition))
	}
	for _, t := range res.Targets {
		reasons = append(reasons, fmt.Sprintf("%s %s (DC %d)", t.Name, t.Condition, t.DC))
	}
	outcome := "failure"
	if res.Success {
		outcome = "success"
	}
	fmt.Fprintf(w, "%s: DC %d [%s] rolled %s: %s", eventID, res.DC, strings.Join(reasons, "; "), res.RollText, outcome)
	if res.Blind {
		fmt.Fprintf(w, " (blind, whispered to %s)", strings.Join(res.Whisper, ", "))
	}
	fmt.Fprintln(w)
}
