package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/lvfit/internal/config"
	"github.com/san-kum/lvfit/internal/dataset"
	"github.com/san-kum/lvfit/internal/dynamo"
	"github.com/san-kum/lvfit/internal/fit"
	"github.com/san-kum/lvfit/internal/integrators"
	"github.com/san-kum/lvfit/internal/optim"
	"github.com/san-kum/lvfit/internal/storage"
	"github.com/san-kum/lvfit/internal/tui"
	"github.com/san-kum/lvfit/internal/viz"
)

func runFit(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Data.Path = args[0]
	}
	if cmd.Flags().Changed("preset") {
		grid, ok := config.GetPreset(preset)
		if !ok {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Grid = grid
	}
	if cmd.Flags().Changed("prey-col") {
		cfg.Data.PreyColumn = preyCol
	}
	if cmd.Flags().Changed("pred-col") {
		cfg.Data.PredatorColumn = predCol
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	applyModelFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	obs, err := dataset.Load(cfg.Data.Path, cfg.Columns())
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "path", cfg.Data.Path, "observations", obs.Len())

	ctx := cmd.Context()
	opts := cfg.FitOptions()
	opts.Logger = logger

	begin := time.Now()
	var res *fit.Result
	if live {
		// the live view owns the terminal
		opts.Logger = nil
		res, err = tui.RunFit(ctx, cfg.Grid.Size(), func(ctx context.Context, progress func(optim.Evaluation)) (*fit.Result, error) {
			opts.Progress = progress
			return fit.OptimizeParameters(ctx, obs, cfg.Grid, opts)
		})
	} else {
		res, err = fit.OptimizeParameters(ctx, obs, cfg.Grid, opts)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(begin)

	fmt.Println(viz.RenderFit(res))
	fmt.Printf("completed in %v\n\n", elapsed.Round(time.Millisecond))

	traj, err := fit.Simulate(ctx, res.Best, opts)
	if err != nil {
		return err
	}
	fmt.Println(viz.PlotComparison(obs, traj, viz.DefaultWidth, viz.DefaultHeight))

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Dataset:     cfg.Data.Path,
		Params:      res.Best,
		LowestError: res.LowestError,
		Evaluated:   res.Evaluated,
		Grid:        cfg.Grid,
		Step:        opts.Step,
		Iterations:  opts.Iterations,
		Integrator:  opts.Integrator,
	}, traj, stride)
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "dir", dataDir)
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func currentParams() fit.Params {
	return fit.Params{Alpha: alpha, Beta: beta, Gamma: gamma, Delta: delta}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyModelFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	p := currentParams()
	opts := cfg.FitOptions()
	logger.Debug("simulating", "params", p.String(), "step", opts.Step, "iterations", opts.Iterations)

	traj, err := fit.Simulate(cmd.Context(), p, opts)
	if err != nil {
		return err
	}

	last := traj.Len() - 1
	fmt.Printf("params: %s\n", p)
	fmt.Printf("samples: %d\n", traj.Len())
	fmt.Printf("final: prey=%.3f predator=%.3f (t=%.3f)\n", traj.Prey[last], traj.Predator[last], traj.Time[last])
	if eq, ok := p.Model().Equilibrium(); ok {
		fmt.Printf("equilibrium: prey=%.3f predator=%.3f\n", eq[0]*fit.Scale, eq[1]*fit.Scale)
	}
	fmt.Println()
	fmt.Println(viz.PlotTrajectory(traj, viz.DefaultWidth, viz.DefaultHeight, "prey (blue) / predator (red)"))
	return nil
}

// invariantDrift is the change of the conserved quantity between the first
// and last samples.
func invariantDrift(p fit.Params, traj *fit.Trajectory) float64 {
	m := p.Model()
	at := func(i int) float64 {
		return m.Invariant(dynamo.State{traj.Prey[i] / fit.Scale, traj.Predator[i] / fit.Scale})
	}
	return at(traj.Len()-1) - at(0)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyModelFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	p := currentParams()
	fmt.Printf("params: %s\n\n", p)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL PREY\tFINAL PREDATOR\tINVARIANT DRIFT\tTIME")

	for _, name := range names {
		opts := cfg.FitOptions()
		opts.Integrator = name

		begin := time.Now()
		traj, err := fit.Simulate(cmd.Context(), p, opts)
		elapsed := time.Since(begin)
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			logger.Warn("integrator diverged", "integrator", name, "step", simErr.Step, "time", simErr.Time)
			fmt.Fprintf(w, "%s\tdiverged at step %d\t-\t-\t%v\n", name, simErr.Step, elapsed.Round(time.Microsecond))
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		last := traj.Len() - 1
		drift := invariantDrift(p, traj)
		logger.Debug("integrator compared", "integrator", name, "drift", drift)
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%s\t%v\n",
			name,
			traj.Prey[last],
			traj.Predator[last],
			formatFloat(drift),
			elapsed.Round(time.Microsecond),
		)
	}
	return w.Flush()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3e", v)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCOMBINATIONS\tALPHA")
	for _, name := range config.ListPresets() {
		g, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%v\n", name, g.Size(), g.Alpha)
	}
	return w.Flush()
}
