package fit_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lvfit/internal/dataset"
	"github.com/san-kum/lvfit/internal/dynamo"
	"github.com/san-kum/lvfit/internal/fit"
	"github.com/san-kum/lvfit/internal/optim"
)

func shortOptions(iterations int) fit.Options {
	opts := fit.DefaultOptions()
	opts.Iterations = iterations
	return opts
}

var _ = Describe("Simulate", func() {
	ctx := context.Background()

	It("returns iterations+1 samples for non-negative parameters", func() {
		for _, n := range []int{0, 1, 10, 2500} {
			for _, p := range []fit.Params{
				{Alpha: 0, Beta: 0, Gamma: 0, Delta: 0},
				{Alpha: 1, Beta: 1, Gamma: 1, Delta: 1},
				{Alpha: 4.0 / 3, Beta: 1.0 / 3, Gamma: 2.0 / 3, Delta: 1},
			} {
				traj, err := fit.Simulate(ctx, p, shortOptions(n))
				Expect(err).NotTo(HaveOccurred())
				Expect(traj.Time).To(HaveLen(n + 1))
				Expect(traj.Prey).To(HaveLen(n + 1))
				Expect(traj.Predator).To(HaveLen(n + 1))
			}
		}
	})

	It("starts from the scaled default populations", func() {
		traj, err := fit.Simulate(ctx, fit.Params{Alpha: 1, Beta: 1, Gamma: 1, Delta: 1}, shortOptions(3))
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Time[0]).To(Equal(0.0))
		Expect(traj.Prey[0]).To(Equal(1000.0))
		Expect(traj.Predator[0]).To(Equal(2000.0))
	})

	It("takes explicit Euler steps", func() {
		p := fit.Params{Alpha: 1, Beta: 0.5, Gamma: 0.75, Delta: 0.25}
		traj, err := fit.Simulate(ctx, p, shortOptions(1))
		Expect(err).NotTo(HaveOccurred())

		prey, pred, step := 1.0, 2.0, fit.DefaultStep
		wantPrey := (prey*(p.Alpha-p.Beta*pred))*step + prey
		wantPred := (pred*(p.Delta*prey-p.Gamma))*step + pred
		Expect(traj.Prey[1]).To(BeNumerically("~", wantPrey*fit.Scale, 1e-9))
		Expect(traj.Predator[1]).To(BeNumerically("~", wantPred*fit.Scale, 1e-9))
		Expect(traj.Time[1]).To(BeNumerically("~", step, 1e-15))
	})

	It("oscillates around the equilibrium when every coefficient is one", func() {
		traj, err := fit.Simulate(ctx, fit.Params{Alpha: 1, Beta: 1, Gamma: 1, Delta: 1}, shortOptions(20_000))
		Expect(err).NotTo(HaveOccurred())

		crossings := 0
		for i := 1; i < traj.Len(); i++ {
			Expect(traj.Prey[i]).To(BeNumerically(">", 0))
			Expect(traj.Predator[i]).To(BeNumerically(">", 0))
			if (traj.Prey[i-1]-1000)*(traj.Prey[i]-1000) < 0 {
				crossings++
			}
		}
		Expect(crossings).To(BeNumerically(">=", 4))

		lv := fit.Params{Alpha: 1, Beta: 1, Gamma: 1, Delta: 1}.Model()
		v0 := lv.Invariant(dynamo.State{1, 2})
		last := traj.Len() - 1
		vEnd := lv.Invariant(dynamo.State{traj.Prey[last] / fit.Scale, traj.Predator[last] / fit.Scale})
		Expect(math.Abs(vEnd-v0) / v0).To(BeNumerically("<", 0.05))
	})

	It("rejects a non-positive step", func() {
		opts := shortOptions(10)
		opts.Step = 0
		_, err := fit.Simulate(ctx, fit.Params{Alpha: 1, Beta: 1, Gamma: 1, Delta: 1}, opts)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects an unknown integrator", func() {
		opts := shortOptions(10)
		opts.Integrator = "midpoint"
		_, err := fit.Simulate(ctx, fit.Params{}, opts)
		Expect(err).To(HaveOccurred())
	})

	It("starts from the model's default state", func() {
		x0 := fit.Params{}.Model().DefaultState()
		Expect(fit.DefaultOptions().Initial).To(Equal([2]float64{x0[0], x0[1]}))
	})

	It("records non-finite states unless validation is on", func() {
		diverging := fit.Params{Alpha: 1e300, Beta: 1, Gamma: 1, Delta: 1}

		traj, err := fit.Simulate(ctx, diverging, shortOptions(10))
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Len()).To(Equal(11))
		Expect(math.IsInf(traj.Prey[2], 0) || math.IsNaN(traj.Prey[2])).To(BeTrue())

		opts := shortOptions(10)
		opts.ValidateState = true
		_, err = fit.Simulate(ctx, diverging, opts)
		Expect(err).To(MatchError(dynamo.ErrInvalidState))

		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(BeNumerically("<", 3))
	})
})

var _ = Describe("CalculateMSE", func() {
	It("sums the prey and predator errors", func() {
		mse, err := fit.CalculateMSE(
			[]float64{1, 2}, []float64{10, 10},
			[]float64{1, 4}, []float64{7, 13},
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(mse).To(BeNumerically("~", 2.0+9.0, 1e-12))
	})
})

var _ = Describe("OptimizeParameters", func() {
	var (
		ctx    context.Context
		truth  fit.Params
		opts   fit.Options
		obs    *dataset.Observations
		grid   fit.Grid
		nSamps = 40
	)

	BeforeEach(func() {
		ctx = context.Background()
		truth = fit.Params{Alpha: 2.0 / 3, Beta: 4.0 / 3, Gamma: 1, Delta: 1.0 / 3}
		opts = shortOptions(500)
		grid = fit.Grid{
			Alpha: []float64{1.0 / 3, 2.0 / 3, 1},
			Beta:  []float64{1, 4.0 / 3},
			Gamma: []float64{2.0 / 3, 1},
			Delta: []float64{1.0 / 3, 2.0 / 3},
		}

		traj, err := fit.Simulate(ctx, truth, opts)
		Expect(err).NotTo(HaveOccurred())
		head := traj.Head(nSamps)
		obs, err = dataset.New(head.Prey, head.Predator)
		Expect(err).NotTo(HaveOccurred())
	})

	It("recovers the parameters that generated the data", func() {
		res, err := fit.OptimizeParameters(ctx, obs, grid, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Best).To(Equal(truth))
		Expect(res.LowestError).To(Equal(0.0))
		Expect(res.Evaluated).To(Equal(grid.Size()))
	})

	It("reports an error no greater than any recomputed grid point", func() {
		noisy, err := dataset.New(
			append([]float64(nil), obs.Prey...),
			append([]float64(nil), obs.Predator...),
		)
		Expect(err).NotTo(HaveOccurred())
		for i := range noisy.Prey {
			noisy.Prey[i] += float64(i%3) * 2.5
			noisy.Predator[i] -= float64(i%5) * 1.5
		}

		res, err := fit.OptimizeParameters(ctx, noisy, grid, opts)
		Expect(err).NotTo(HaveOccurred())

		for _, a := range grid.Alpha {
			for _, b := range grid.Beta {
				for _, g := range grid.Gamma {
					for _, d := range grid.Delta {
						mse, err := fit.Evaluate(ctx, noisy, fit.Params{Alpha: a, Beta: b, Gamma: g, Delta: d}, opts)
						Expect(err).NotTo(HaveOccurred())
						Expect(res.LowestError).To(BeNumerically("<=", mse))
					}
				}
			}
		}

		again, err := fit.Evaluate(ctx, noisy, res.Best, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(res.LowestError))
	})

	It("gives the same answer with parallel workers", func() {
		seq, err := fit.OptimizeParameters(ctx, obs, grid, opts)
		Expect(err).NotTo(HaveOccurred())

		opts.Workers = 4
		par, err := fit.OptimizeParameters(ctx, obs, grid, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(par).To(Equal(seq))
	})

	It("reports progress for every combination", func() {
		var calls atomic.Int32
		opts.Workers = 3
		opts.Progress = func(optim.Evaluation) { calls.Add(1) }

		_, err := fit.OptimizeParameters(ctx, obs, grid, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(int(calls.Load())).To(Equal(grid.Size()))
	})

	It("logs the winning combination", func() {
		var buf bytes.Buffer
		opts.Logger = slog.New(slog.NewTextHandler(&buf, nil))

		_, err := fit.OptimizeParameters(ctx, obs, grid, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("grid search finished"))
		Expect(buf.String()).NotTo(ContainSubstring("evaluated"))
	})

	It("rejects an empty grid axis", func() {
		grid.Gamma = nil
		_, err := fit.OptimizeParameters(ctx, obs, grid, opts)
		Expect(err).To(MatchError(fit.ErrEmptyGrid))
	})

	It("rejects observations longer than the trajectory", func() {
		_, err := fit.OptimizeParameters(ctx, obs, grid, shortOptions(nSamps-2))
		Expect(err).To(MatchError(fit.ErrTooFewSamples))
	})

	It("scores diverging combinations without aborting the search", func() {
		grid = fit.Grid{
			Alpha: []float64{1e300, truth.Alpha},
			Beta:  []float64{truth.Beta},
			Gamma: []float64{truth.Gamma},
			Delta: []float64{truth.Delta},
		}

		var mu sync.Mutex
		values := map[int]float64{}
		opts.Progress = func(e optim.Evaluation) {
			mu.Lock()
			defer mu.Unlock()
			values[e.Index] = e.Value
		}
		// fits always record diverging trajectories
		opts.ValidateState = true

		res, err := fit.OptimizeParameters(ctx, obs, grid, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Best).To(Equal(truth))
		Expect(res.LowestError).To(Equal(0.0))
		Expect(res.Evaluated).To(Equal(2))

		Expect(values).To(HaveLen(2))
		Expect(math.IsNaN(values[0]) || math.IsInf(values[0], 1)).To(BeTrue())
	})

	It("rejects missing observations", func() {
		_, err := fit.OptimizeParameters(ctx, nil, grid, opts)
		Expect(err).To(MatchError(fit.ErrNoObservations))
	})

	It("stops when the context is canceled", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := fit.OptimizeParameters(canceled, obs, grid, opts)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Grid", func() {
	It("defaults to four values per axis", func() {
		g := fit.DefaultGrid()
		Expect(g.Size()).To(Equal(256))
		Expect(g.Alpha).To(Equal([]float64{1.0 / 3, 2.0 / 3, 1, 4.0 / 3}))
		Expect(g.Validate()).To(Succeed())
	})
})
