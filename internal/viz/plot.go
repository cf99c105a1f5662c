package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lvfit/internal/dataset"
	"github.com/san-kum/lvfit/internal/fit"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 15
)

// Downsample keeps at most n evenly spaced samples of data, always including
// the first and last.
func Downsample(data []float64, n int) []float64 {
	if n < 2 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	scale := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(math.Round(float64(i)*scale))]
	}
	return out
}

// PlotTrajectory charts simulated prey (blue) and predator (red) over the
// whole run.
func PlotTrajectory(traj *fit.Trajectory, width, height int, caption string) string {
	if traj == nil || traj.Len() == 0 {
		return ""
	}
	return asciigraph.PlotMany(
		[][]float64{Downsample(traj.Prey, width), Downsample(traj.Predator, width)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(caption),
	)
}

// PlotComparison charts observed populations against the simulated samples
// they were scored against: simulated prey/predator in blue/red, observed in
// cyan/magenta.
func PlotComparison(obs *dataset.Observations, traj *fit.Trajectory, width, height int) string {
	if obs == nil || traj == nil || obs.Len() == 0 {
		return ""
	}
	head := traj.Head(obs.Len())
	return asciigraph.PlotMany(
		[][]float64{head.Prey, head.Predator, obs.Prey, obs.Predator},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Cyan, asciigraph.Magenta),
		asciigraph.Caption("simulated (blue/red) vs observed (cyan/magenta)"),
	)
}

// PlotFunction charts sampled function values. Non-finite samples become
// gaps.
func PlotFunction(ys []float64, width, height int, caption string) string {
	if len(ys) == 0 {
		return ""
	}
	data := make([]float64, len(ys))
	for i, y := range ys {
		if math.IsInf(y, 0) {
			y = math.NaN()
		}
		data[i] = y
	}
	return asciigraph.Plot(
		Downsample(data, width),
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.DarkOrange),
		asciigraph.Caption(caption),
	)
}
