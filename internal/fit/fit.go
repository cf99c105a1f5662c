// Package fit estimates Lotka-Volterra coefficients from observed
// populations by exhaustive grid search.
//
// Each candidate (alpha, beta, gamma, delta) is simulated with a fixed-step
// integrator from the default initial populations, the trajectory is scaled,
// and its first len(observations) samples are scored against the data with
// the summed prey and predator MSE. The lowest score wins.
package fit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lvfit/internal/dataset"
	"github.com/san-kum/lvfit/internal/dynamo"
	"github.com/san-kum/lvfit/internal/integrators"
	"github.com/san-kum/lvfit/internal/metrics"
	"github.com/san-kum/lvfit/internal/models"
	"github.com/san-kum/lvfit/internal/optim"
)

const (
	DefaultStep       = 0.001
	DefaultIterations = 100_000
	// Scale converts simulated populations (in thousands) to counts.
	Scale = 1000.0
)

var (
	ErrEmptyGrid      = errors.New("fit: parameter grid has an empty axis")
	ErrTooFewSamples  = errors.New("fit: trajectory shorter than observations")
	ErrNoObservations = errors.New("fit: no observations")
)

// ParamNames lists the model coefficients in grid order.
var ParamNames = []string{"alpha", "beta", "gamma", "delta"}

type Params struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
	Delta float64 `json:"delta" yaml:"delta"`
}

// paramsFromMap applies a named grid point to the model coefficients.
// Unknown names fail with dynamo.ErrUnknownParam.
func paramsFromMap(m map[string]float64) (Params, error) {
	lv := &models.LotkaVolterra{}
	if err := dynamo.ApplyParams(lv, m); err != nil {
		return Params{}, err
	}
	return paramsFromModel(lv), nil
}

func paramsFromModel(lv *models.LotkaVolterra) Params {
	values := lv.GetParams()
	return Params{Alpha: values["alpha"], Beta: values["beta"], Gamma: values["gamma"], Delta: values["delta"]}
}

func (p Params) String() string {
	return fmt.Sprintf("alpha=%g, beta=%g, gamma=%g, delta=%g", p.Alpha, p.Beta, p.Gamma, p.Delta)
}

func (p Params) Model() *models.LotkaVolterra {
	return models.NewLotkaVolterra(p.Alpha, p.Beta, p.Gamma, p.Delta)
}

type Options struct {
	Step       float64
	Iterations int
	// Integrator names an entry of the integrators registry.
	Integrator string
	// Initial is the unscaled (prey, predator) starting state.
	Initial [2]float64
	// ValidateState stops a simulation at its first non-finite state with a
	// *dynamo.SimulationError. The fitter leaves it off so diverging grid
	// points score NaN/Inf instead of aborting the search.
	ValidateState bool
	// Workers bounds concurrent grid evaluations; below 2 is sequential.
	Workers int
	Logger  *slog.Logger
	// Progress, when set, receives each scored grid point. It may be called
	// concurrently when Workers > 1.
	Progress func(optim.Evaluation)
}

func DefaultOptions() Options {
	x0 := (&models.LotkaVolterra{}).DefaultState()
	return Options{
		Step:       DefaultStep,
		Iterations: DefaultIterations,
		Integrator: integrators.Default,
		Initial:    [2]float64{x0[0], x0[1]},
		Workers:    1,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Trajectory is a scaled simulation. All three series have Iterations+1
// samples.
type Trajectory struct {
	Time     []float64
	Prey     []float64
	Predator []float64
}

func (t *Trajectory) Len() int { return len(t.Time) }

// Head returns a view of the first n samples.
func (t *Trajectory) Head(n int) *Trajectory {
	if n > t.Len() {
		n = t.Len()
	}
	return &Trajectory{Time: t.Time[:n], Prey: t.Prey[:n], Predator: t.Predator[:n]}
}

// Simulate integrates the model for p and returns the scaled trajectory.
func Simulate(ctx context.Context, p Params, opts Options) (*Trajectory, error) {
	integ, err := integrators.Get(opts.Integrator)
	if err != nil {
		return nil, err
	}

	s := dynamo.New(p.Model(), integ)
	result, err := s.Run(ctx, dynamo.State{opts.Initial[0], opts.Initial[1]}, dynamo.Config{
		Dt:            opts.Step,
		Steps:         opts.Iterations,
		ValidateState: opts.ValidateState,
	})
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{
		Time:     result.Times,
		Prey:     result.Component(0),
		Predator: result.Component(1),
	}
	floats.Scale(Scale, traj.Prey)
	floats.Scale(Scale, traj.Predator)
	return traj, nil
}

// CalculateMSE is MSE(prey) + MSE(predator).
func CalculateMSE(simPrey, simPredator, realPrey, realPredator []float64) (float64, error) {
	return metrics.PairMSE(simPrey, simPredator, realPrey, realPredator)
}

// Evaluate simulates p and scores its leading samples against obs.
func Evaluate(ctx context.Context, obs *dataset.Observations, p Params, opts Options) (float64, error) {
	if obs == nil || obs.Len() == 0 {
		return 0, ErrNoObservations
	}
	traj, err := Simulate(ctx, p, opts)
	if err != nil {
		return 0, err
	}
	if traj.Len() < obs.Len() {
		return 0, fmt.Errorf("%w: %d samples for %d observations", ErrTooFewSamples, traj.Len(), obs.Len())
	}
	head := traj.Head(obs.Len())
	return CalculateMSE(head.Prey, head.Predator, obs.Prey, obs.Predator)
}

type Result struct {
	Best        Params
	LowestError float64
	Evaluated   int
}

// OptimizeParameters scores every combination in grid and returns the one
// with the lowest error. Ties keep the combination that comes first in grid
// order, regardless of opts.Workers.
func OptimizeParameters(ctx context.Context, obs *dataset.Observations, grid Grid, opts Options) (*Result, error) {
	if obs == nil || obs.Len() == 0 {
		return nil, ErrNoObservations
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if opts.Iterations+1 < obs.Len() {
		return nil, fmt.Errorf("%w: %d samples for %d observations", ErrTooFewSamples, opts.Iterations+1, obs.Len())
	}

	opts.ValidateState = false
	log := opts.logger()
	search := optim.NewGridSearch(ParamNames, grid.Axes()).WithWorkers(opts.Workers)

	log.Info("grid search started",
		"combinations", search.Size(),
		"observations", obs.Len(),
		"step", opts.Step,
		"iterations", opts.Iterations,
		"workers", opts.Workers,
	)

	search.OnEvaluation(func(e optim.Evaluation) {
		p, _ := paramsFromMap(e.Point)
		if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
			log.Debug("non-finite error", "index", e.Index, "params", p.String())
		} else {
			log.Debug("evaluated", "index", e.Index, "params", p.String(), "mse", e.Value)
		}
		if opts.Progress != nil {
			opts.Progress(e)
		}
	})

	res, err := search.Search(ctx, func(ctx context.Context, point map[string]float64) (float64, error) {
		p, err := paramsFromMap(point)
		if err != nil {
			return 0, err
		}
		return Evaluate(ctx, obs, p, opts)
	})
	if err != nil {
		return nil, err
	}

	best, err := paramsFromMap(res.Best)
	if err != nil {
		return nil, err
	}
	out := &Result{
		Best:        best,
		LowestError: res.Value,
		Evaluated:   res.Evaluated,
	}
	log.Info("grid search finished", "best", out.Best.String(), "mse", out.LowestError)
	return out, nil
}
