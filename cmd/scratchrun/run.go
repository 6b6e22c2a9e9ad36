package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/input"
	"github.com/lixenwraith/scratchrun/render"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <project>",
		Short: "Run a project interactively; ESC or Ctrl-C quits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args[0])
		},
	}
}

func (a *app) run(ctx context.Context, path string) error {
	in := input.NewState(a.cfg.Display.KeyHold, nil)
	world, err := a.newWorld(path, in)
	if err != nil {
		return err
	}
	defer func() {
		if live := world.Shutdown(); live > 0 {
			a.log.Warn("threads abandoned at shutdown", "live", live)
		}
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	// Restore the terminal before a crash report is printed
	core.SetCrashHandler(func(r any, stack []byte) {
		screen.Fini()
		a.log.Error("crash", "panic", fmt.Sprint(r), "stack", string(stack))
	})

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := engine.NewScheduler(world, a.cfg.FrameInterval())
	host := render.NewHost(screen, world, sched, in, render.HostOptions{
		FrameInterval: a.cfg.FrameInterval(),
		Logger:        a.log,
	})
	return host.Run(ctx)
}
