package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/scratchrun/blocks"
	"github.com/lixenwraith/scratchrun/config"
	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/input"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/status"
)

// app carries state shared by subcommands once the root has loaded config
type app struct {
	configPath string
	debug      bool
	logDir     string

	cfg     config.Config
	log     *slog.Logger
	logFile *os.File
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "scratchrun",
		Short:         "Run Scratch 3 projects in the terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logFile != nil {
				a.logFile.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default scratchrun.toml)")
	flags.BoolVar(&a.debug, "debug", false, "write a debug log")
	flags.StringVar(&a.logDir, "log-dir", "", "debug log directory")

	root.AddCommand(newRunCmd(a), newDumpCmd(a), newConfigCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = a.debug
	}
	if a.logDir != "" {
		cfg.Log.Dir = a.logDir
	}
	a.cfg = cfg
	a.log, a.logFile = setupLogging(cfg.Log.Dir, cfg.Log.Debug)
	return nil
}

// newWorld loads a project file and builds a world with the full opcode table
func (a *app) newWorld(path string, in input.Source) (*engine.World, error) {
	pkg, err := project.LoadFile(path)
	if err != nil {
		return nil, err
	}
	a.log.Info("project loaded", "path", path, "targets", len(pkg.Targets))

	return engine.NewWorld(pkg, blocks.NewTable(), engine.Options{
		Config:  a.cfg.EngineConfig(),
		Logger:  a.log,
		Metrics: status.NewRegistry(),
		Input:   in,
	})
}
