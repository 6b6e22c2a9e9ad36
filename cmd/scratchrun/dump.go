package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/scratchrun/input"
)

// idlePoll is how often dump checks whether every script has finished
const idlePoll = 10 * time.Millisecond

func newDumpCmd(a *app) *cobra.Command {
	var runFor time.Duration
	var keys []string

	cmd := &cobra.Command{
		Use:   "dump <project>",
		Short: "Run a project headless and print the final state as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dump(cmd.Context(), args[0], runFor, keys, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&runFor, "for", 2*time.Second, "maximum run time before the snapshot")
	cmd.Flags().StringSliceVar(&keys, "press", nil, "keys to press after the green flag")
	return cmd
}

// dump clicks the green flag, waits for idle or the deadline and writes a snapshot
func (a *app) dump(ctx context.Context, path string, runFor time.Duration, keys []string, out io.Writer) error {
	in := input.NewState(0, nil)
	world, err := a.newWorld(path, in)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, runFor)
	defer cancel()

	started := world.GreenFlag()
	for _, k := range keys {
		in.Press(k)
		started = append(started, world.KeyPressed(k)...)
	}
	a.log.Info("dump started", "scripts", len(started), "for", runFor)

	ticker := time.NewTicker(idlePoll)
	defer ticker.Stop()
wait:
	for !world.Idle() {
		select {
		case <-ctx.Done():
			break wait
		case <-ticker.C:
		}
	}

	// Snapshot before shutdown so stop-all does not mark the world stopped
	err = world.WriteYAML(out)
	if live := world.Shutdown(); live > 0 {
		a.log.Warn("threads abandoned at shutdown", "live", live)
	}
	return err
}
