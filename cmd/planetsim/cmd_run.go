package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/planetreboot/internal/config"
	"github.com/zeusync/planetreboot/internal/injector"
)

type configLoader func() (config.Config, error)

func newRunCmd(load configLoader) *cobra.Command {
	var (
		noStream     bool
		reduceMotion bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation until interrupted",
		Long: `Boot the planet from the stored state, tick it and serve the render
stream. The state is persisted whenever it changes and once more on exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if noStream {
				cfg.Stream.Enabled = false
			}
			if reduceMotion {
				cfg.Simulation.Litter.ReduceMotion = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := injector.InitializeApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Do not serve the websocket stream")
	cmd.Flags().BoolVar(&reduceMotion, "reduce-motion", false, "Skip flight and scale animations")
	return cmd
}
