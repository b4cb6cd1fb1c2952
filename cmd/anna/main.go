package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/anna/config"
	"github.com/spf13/cobra"
)

var (
	steps      int
	dt         float64
	iterations int
	workers    int
	plotBody   string
	verbose    bool

	benchBodies int
	benchSeed   uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "anna",
		Short:        "fixed-step rigid body simulation",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every substep")

	runCmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "run a scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			return runScene(cmd, cfg)
		},
	}
	addSceneFlags(runCmd)

	presetCmd := &cobra.Command{
		Use:   "preset [name]",
		Short: "run a built-in scene, or list them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "presets:")
				for _, name := range config.ListPresets() {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
				}
				return nil
			}
			cfg, err := config.Preset(args[0])
			if err != nil {
				return err
			}
			return runScene(cmd, cfg)
		},
	}
	addSceneFlags(presetCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time a random pile of bodies",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchBodies, "bodies", 500, "number of dynamic bodies")
	benchCmd.Flags().IntVar(&steps, "steps", 300, "number of steps")
	benchCmd.Flags().IntVar(&workers, "workers", 4, "worker goroutines")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 1, "random seed")

	rootCmd.AddCommand(runCmd, presetCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (scene value when 0)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "step duration (scene value when 0)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "solver iterations (scene value when 0)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (scene value when 0)")
	cmd.Flags().StringVar(&plotBody, "plot", "", "plot the height of the named body")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
