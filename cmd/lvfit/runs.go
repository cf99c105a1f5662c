package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lvfit/internal/analysis"
	"github.com/san-kum/lvfit/internal/fit"
	"github.com/san-kum/lvfit/internal/storage"
	"github.com/san-kum/lvfit/internal/viz"
)

func loadRun(runID string) (*storage.RunMetadata, *fit.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if traj.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, traj, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDATASET\tALPHA\tBETA\tGAMMA\tDELTA\tERROR\tGRID")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.6g\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dataset,
			run.Params.Alpha,
			run.Params.Beta,
			run.Params.Gamma,
			run.Params.Delta,
			run.LowestError,
			run.Evaluated,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("dataset: %s\n", meta.Dataset)
	fmt.Printf("integrator: %s (step %g, %d iterations)\n", meta.Integrator, meta.Step, meta.Iterations)
	fmt.Println()
	fmt.Println(viz.RenderFit(&fit.Result{
		Best:        meta.Params,
		LowestError: meta.LowestError,
		Evaluated:   meta.Evaluated,
	}))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("params: %s\n", meta.Params)
	fmt.Printf("samples: %d (every %d steps)\n\n", traj.Len(), meta.Stride)

	fmt.Println(viz.PlotTrajectory(traj, viz.DefaultWidth, viz.DefaultHeight, "prey (blue) / predator (red)"))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	dt := meta.Step * float64(meta.Stride)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("params: %s\n", meta.Params)
	if eq, ok := meta.Params.Model().Equilibrium(); ok {
		fmt.Printf("equilibrium: prey=%.3f predator=%.3f\n", eq[0]*fit.Scale, eq[1]*fit.Scale)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMIN\tMAX\tMEAN\tFFT PERIOD\tCROSSING PERIOD\tCYCLES")

	for _, s := range []struct {
		name string
		data []float64
	}{
		{"prey", traj.Prey},
		{"predator", traj.Predator},
	} {
		mean := stat.Mean(s.data, nil)

		fftPeriod := "n/a"
		if p, ok := analysis.DominantPeriod(s.data, dt); ok {
			fftPeriod = fmt.Sprintf("%.3f", p)
		}

		crossings := analysis.UpCrossings(traj.Time, s.data, mean)
		crossPeriod := "n/a"
		if p, ok := analysis.MeanPeriod(crossings); ok {
			crossPeriod = fmt.Sprintf("%.3f", p)
		}

		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%s\t%s\t%d\n",
			s.name,
			floats.Min(s.data),
			floats.Max(s.data),
			mean,
			fftPeriod,
			crossPeriod,
			len(crossings),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	spectrum := analysis.PowerSpectrum(traj.Prey)
	if len(spectrum) > 1 {
		fmt.Println()
		fmt.Println(viz.PlotFunction(spectrum[1:], viz.DefaultWidth, 10, "prey power spectrum"))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(traj.Prey, traj.Predator, phaseStride)
	minX, maxX, minY, maxY := portrait.Bounds()

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("prey [%.1f, %.1f]  predator [%.1f, %.1f]\n\n", minX, maxX, minY, maxY)
	fmt.Println(portrait.ASCII(60, 20))
	fmt.Println("x: prey   y: predator   . early  o mid  ● late")
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, traj)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, traj)
}
