package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/lvfit/internal/config"
	"github.com/san-kum/lvfit/internal/logging"
)

var (
	dataDir    string
	configFile string
	logLevel   string

	// fit / simulate
	preset     string
	step       float64
	iterations int
	workers    int
	preyCol    string
	predCol    string
	integrator string
	live       bool
	noSave     bool
	stride     int
	validate   bool
	alpha      float64
	beta       float64
	gamma      float64
	delta      float64

	// roots
	left      float64
	right     float64
	precision float64
	start     float64
	end       float64
	sampleDx  float64

	// phase
	phaseStride int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lvfit",
		Short:         "fit Lotka-Volterra coefficients to population data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	fitCmd := &cobra.Command{
		Use:   "fit [csv]",
		Short: "grid search the best coefficients for a dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFit,
	}
	fitCmd.Flags().StringVar(&preset, "preset", "", "grid preset")
	fitCmd.Flags().Float64Var(&step, "step", 0, "integration step")
	fitCmd.Flags().IntVar(&iterations, "iterations", 0, "integration steps")
	fitCmd.Flags().IntVar(&workers, "workers", 1, "concurrent grid evaluations")
	fitCmd.Flags().StringVar(&preyCol, "prey-col", "", "prey column name")
	fitCmd.Flags().StringVar(&predCol, "pred-col", "", "predator column name")
	fitCmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	fitCmd.Flags().BoolVar(&live, "live", false, "show live progress")
	fitCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	fitCmd.Flags().IntVar(&stride, "stride", 100, "store every n-th trajectory sample")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate one parameter set",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	addParamFlags(simulateCmd)
	simulateCmd.Flags().Float64Var(&step, "step", 0, "integration step")
	simulateCmd.Flags().IntVar(&iterations, "iterations", 0, "integration steps")
	simulateCmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	simulateCmd.Flags().BoolVar(&validate, "validate", false, "stop at the first non-finite state")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on one parameter set",
		RunE:  compareIntegrators,
	}
	addParamFlags(compareCmd)
	compareCmd.Flags().Float64Var(&step, "step", 0, "integration step")
	compareCmd.Flags().IntVar(&iterations, "iterations", 0, "integration steps")
	compareCmd.Flags().BoolVar(&validate, "validate", false, "stop at the first non-finite state")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run result",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation analysis of a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "prey/predator phase plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&phaseStride, "stride", 1, "plot every n-th stored sample")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list grid presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	solveCmd := &cobra.Command{
		Use:   "solve [function]",
		Short: "bisect a root of a named function",
		Args:  cobra.MaximumNArgs(1),
		RunE:  solveRoot,
	}
	solveCmd.Flags().Float64Var(&left, "left", 0, "left bound")
	solveCmd.Flags().Float64Var(&right, "right", 0, "right bound")
	solveCmd.Flags().Float64Var(&precision, "precision", 0, "stop when the interval is narrower")

	plotFuncCmd := &cobra.Command{
		Use:   "plot-func [function]",
		Short: "sample and plot a named function",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotFunction,
	}
	plotFuncCmd.Flags().Float64Var(&start, "start", 0, "first sample")
	plotFuncCmd.Flags().Float64Var(&end, "end", 0, "end of range (exclusive)")
	plotFuncCmd.Flags().Float64Var(&sampleDx, "step", 0, "sample spacing")

	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "list named functions",
		Args:  cobra.NoArgs,
		RunE:  listFunctions,
	}

	rootCmd.AddCommand(fitCmd, simulateCmd, compareCmd, listCmd, showCmd, plotCmd, analyzeCmd,
		phaseCmd, exportCSVCmd, exportJSONCmd, presetsCmd, solveCmd, plotFuncCmd, functionsCmd)

	return rootCmd
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&alpha, "alpha", 1, "prey growth rate")
	cmd.Flags().Float64Var(&beta, "beta", 1, "predation rate")
	cmd.Flags().Float64Var(&gamma, "gamma", 1, "predator death rate")
	cmd.Flags().Float64Var(&delta, "delta", 1, "predator growth per prey")
}

// loadConfig reads --config when given, applies --log-level, and returns the
// config together with a logger writing to stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	if configFile != "" {
		logger.Debug("config loaded", "path", configFile)
	}
	return cfg, logger, nil
}

// applyModelFlags overrides the model section with explicitly set flags.
func applyModelFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("step") {
		cfg.Model.Step = step
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Model.Iterations = iterations
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Model.Integrator = integrator
	}
	if cmd.Flags().Changed("validate") {
		cfg.Model.ValidateState = validate
	}
}
