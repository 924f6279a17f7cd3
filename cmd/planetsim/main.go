package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/planetreboot/internal/config"
	"github.com/zeusync/planetreboot/internal/core/observability/log"
)

const defaultConfigPath = "config/planetsim.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "planetsim",
		Short: "Planet reboot litter simulation",
		Long: `planetsim runs the planet reboot simulation: a rotating planet that
collects litter, a health and years-left score that reacts to it, and a
websocket stream that renderers and input clients attach to.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the YAML config file")

	load := func() (config.Config, error) {
		path := configPath
		if p := os.Getenv("PLANETSIM_CONFIG"); p != "" && !root.PersistentFlags().Changed("config") {
			path = p
		}
		cfg, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newRunCmd(load))
	root.AddCommand(newInspectCmd(load))
	root.AddCommand(newResetCmd(load))
	return root
}

func main() {
	err := newRootCmd().Execute()
	_ = log.Provide().Sync()
	if err != nil {
		os.Exit(1)
	}
}
