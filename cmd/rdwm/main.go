// Command rdwm is the CLI entrypoint for the core window manager.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blinklad/rdwm/internal/config"
	"github.com/blinklad/rdwm/internal/logging"
	"github.com/blinklad/rdwm/internal/manager"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath, logLevel string

	root := &cobra.Command{
		Use:   "rdwm",
		Short: "rdwm is a dynamic tiling window manager for X11",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetLevel(logLevel)
			return start(configPath)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to rdwm.toml (default ~/.config/rdwm/rdwm.toml)")
	root.Flags().StringVar(&logLevel, "log-level", "info", "trace|debug|info|warn|error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		switch {
		case errors.Is(err, manager.ErrNoDisplay):
			return 1
		case errors.Is(err, manager.ErrManagerConflict):
			return 2
		default:
			return 1
		}
	}
	return 0
}

func start(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m, err := manager.New(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Init(); err != nil {
		return err
	}
	return m.Run()
}
