package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/pf2-flat-check/internal/gameserver"
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

type remoteOptions struct {
	*rootOptions
	server serverFlags
}

func newRemoteCmd(root *rootOptions) *cobra.Command {
	opts := &remoteOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "remote FILE",
		Short: "Send a scene's roll events to a running flatcheckd",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
	opts.server.bind(cmd)
	return cmd
}

func (o *remoteOptions) run(cmd *cobra.Command, path string) error {
	scene, err := vtt.LoadSceneFromFile(path)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	conn, err := o.server.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	client := gameserver.NewFlatCheckClient(conn)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "== %s (%s via %s)\n", scene.Name, path, o.server.addr)
	for i := range scene.Events {
		ev := &scene.Events[i]
		cctx, cancel := context.WithTimeout(ctx, o.server.timeout)
		out, err := client.Evaluate(cctx, ev)
		cancel()
		if err != nil {
			return fmt.Errorf("event %s: %w", ev.ID, err)
		}
		doc := out.AsMap()
		if len(doc) == 0 {
			fmt.Fprintf(w, "%s: no flat check\n", ev.ID)
			continue
		}
		outcome := "failure"
		if ok, _ := doc["success"].(bool); ok {
			outcome = "success"
		}
		fmt.Fprintf(w, "%s: DC %v rolled %v: %s (message %v)\n", ev.ID, doc["dc"], doc["roll_text"], outcome, doc["message_id"])
	}
	return nil
}
