package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/lvfit/internal/dataset"
	"github.com/san-kum/lvfit/internal/fit"
	"github.com/san-kum/lvfit/internal/roots"
)

func TestDownsample(t *testing.T) {
	data := make([]float64, 101)
	for i := range data {
		data[i] = float64(i)
	}

	out := Downsample(data, 11)
	if len(out) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(out))
	}
	if out[0] != 0 || out[10] != 100 {
		t.Errorf("expected endpoints kept, got %v", out)
	}
	if out[5] != 50 {
		t.Errorf("expected midpoint 50, got %f", out[5])
	}

	short := []float64{1, 2, 3}
	if got := Downsample(short, 10); len(got) != 3 {
		t.Errorf("short series should be unchanged, got %v", got)
	}
}

func TestPlotComparison(t *testing.T) {
	obs, err := dataset.New([]float64{1000, 1100, 1200}, []float64{2000, 1900, 1800})
	if err != nil {
		t.Fatal(err)
	}
	traj := &fit.Trajectory{
		Time:     []float64{0, 0.001, 0.002, 0.003},
		Prey:     []float64{1000, 1050, 1100, 1150},
		Predator: []float64{2000, 1950, 1900, 1850},
	}

	out := PlotComparison(obs, traj, 40, 10)
	if out == "" {
		t.Fatal("expected a plot")
	}
	if !strings.Contains(out, "observed") {
		t.Errorf("expected caption in plot:\n%s", out)
	}

	if PlotComparison(nil, traj, 40, 10) != "" {
		t.Error("expected empty plot without observations")
	}
}

func TestPlotTrajectory(t *testing.T) {
	if PlotTrajectory(&fit.Trajectory{}, 40, 10, "") != "" {
		t.Error("expected empty plot for empty trajectory")
	}
	traj := &fit.Trajectory{
		Time:     []float64{0, 1, 2},
		Prey:     []float64{1, 2, 1},
		Predator: []float64{2, 1, 2},
	}
	if PlotTrajectory(traj, 40, 10, "populations") == "" {
		t.Error("expected a plot")
	}
}

func TestPlotFunctionHandlesNonFinite(t *testing.T) {
	ys := []float64{math.Inf(1), 4, 1, 0, 1, 4, math.NaN()}
	if PlotFunction(ys, 40, 10, "f") == "" {
		t.Error("expected a plot")
	}
	if PlotFunction(nil, 40, 10, "f") != "" {
		t.Error("expected empty plot for no samples")
	}
	if !math.IsInf(ys[0], 1) {
		t.Error("input slice must not be modified")
	}
}

func TestProgressBar(t *testing.T) {
	for _, p := range []float64{-1, 0, 0.5, 1, 2} {
		bar := ProgressBar(p, 10)
		if n := strings.Count(bar, "█") + strings.Count(bar, "░"); n != 10 {
			t.Errorf("percent %f: expected 10 cells, got %d", p, n)
		}
	}
}

func TestRenderFit(t *testing.T) {
	out := RenderFit(&fit.Result{
		Best:        fit.Params{Alpha: 2.0 / 3, Beta: 4.0 / 3, Gamma: 1, Delta: 1},
		LowestError: 123.5,
		Evaluated:   256,
	})
	for _, want := range []string{"alpha", "delta", "123.5", "256"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderRoot(t *testing.T) {
	e, err := roots.Lookup("g")
	if err != nil {
		t.Fatal(err)
	}
	out := RenderRoot(e, 1, 2, math.Cbrt(3))
	if !strings.Contains(out, "x^3 - 3") || !strings.Contains(out, "[1, 2]") {
		t.Errorf("unexpected report:\n%s", out)
	}
}
