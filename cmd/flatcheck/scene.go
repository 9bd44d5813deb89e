package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/condition"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/dice"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/flatcheck"
	"github.com/cory-johannsen/pf2-flat-check/internal/gameserver"
	"github.com/cory-johannsen/pf2-flat-check/internal/i18n"
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

type sceneOptions struct {
	*rootOptions
	conditionsDir string
	locale        string
	hideRollValue bool
	rolls         []int
	html          bool
}

func newSceneCmd(root *rootOptions) *cobra.Command {
	opts := &sceneOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "scene FILE...",
		Short: "Evaluate every roll event in one or more scene files locally",
		Long: `Loads each scene file, evaluates its roll events in order and prints
one line per event. Files are evaluated concurrently; output keeps argument order.
With --roll the d20 cycles through the given faces instead of rolling randomly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), cmd, args)
		},
	}
	cmd.Flags().StringVar(&opts.conditionsDir, "conditions-dir", "content/conditions", "path to condition YAML definitions directory")
	cmd.Flags().StringVar(&opts.locale, "locale", i18n.BaseLocale, "chat card locale")
	cmd.Flags().BoolVar(&opts.hideRollValue, "hide-roll-value", false, "show Success/Failure instead of the rolled number")
	cmd.Flags().IntSliceVar(&opts.rolls, "roll", nil, "fixed d20 faces to cycle through")
	cmd.Flags().BoolVar(&opts.html, "html", false, "also print each rendered chat card")
	return cmd
}

func (o *sceneOptions) run(ctx context.Context, cmd *cobra.Command, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, face := range o.rolls {
		if face < 1 || face > dice.FlatCheckDie {
			return fmt.Errorf("--roll %d: faces must be in [1, %d]", face, dice.FlatCheckDie)
		}
	}
	logger, err := o.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg, err := condition.LoadDirectory(o.conditionsDir)
	if err != nil {
		return err
	}
	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return err
	}
	renderer, err := gameserver.NewRenderer(bundle, o.locale)
	if err != nil {
		return err
	}
	src := dice.NewCryptoSource()
	if len(o.rolls) > 0 {
		src = dice.NewFixedSource(o.rolls...)
	}
	roller := dice.NewLoggedRoller(src, logger)

	outputs := make([]bytes.Buffer, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			scene, err := vtt.LoadSceneFromFile(path)
			if err != nil {
				return err
			}
			messages := gameserver.NewMemoryMessages()
			h := gameserver.NewCheckHandler(
				flatcheck.NewResolver(scene.Grid), reg, roller, renderer,
				messages, nil, nil, o.hideRollValue, logger.With(zap.String("scene", scene.Name)),
			)
			w := &outputs[i]
			fmt.Fprintf(w, "== %s (%s)\n", scene.Name, path)
			for j := range scene.Events {
				ev := &scene.Events[j]
				res, err := h.HandleRoll(ctx, ev)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printResult(w, ev.ID, res)
				if o.html && res != nil {
					fmt.Fprintln(w, res.Message.Content)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range outputs {
		if _, err := outputs[i].WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}
