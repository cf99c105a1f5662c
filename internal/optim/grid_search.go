package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyAxis     = errors.New("optim: grid axis has no values")
	ErrAxisMismatch  = errors.New("optim: parameter names and ranges differ in length")
	ErrNoImprovement = errors.New("optim: no grid point produced a finite objective")
)

// Objective scores one grid point. Lower is better.
type Objective func(ctx context.Context, point map[string]float64) (float64, error)

// Evaluation is one scored grid point. Index is the point's position in
// Cartesian-product order.
type Evaluation struct {
	Index int
	Point map[string]float64
	Value float64
}

type Result struct {
	Best      map[string]float64
	Value     float64
	Evaluated int
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
	observer   func(Evaluation)
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: 1}
}

// WithWorkers sets how many points are evaluated concurrently. Values below
// one mean sequential evaluation.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n < 1 {
		n = 1
	}
	g.workers = n
	return g
}

// OnEvaluation registers fn to receive every scored point. With more than one
// worker fn is called from several goroutines at once.
func (g *GridSearch) OnEvaluation(fn func(Evaluation)) *GridSearch {
	g.observer = fn
	return g
}

// Size is the number of points in the grid.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Point decodes a Cartesian-product index. The last axis varies fastest,
// matching nested loops over the axes in declaration order.
func (g *GridSearch) Point(index int) map[string]float64 {
	point := make(map[string]float64, len(g.paramNames))
	for axis := len(g.ranges) - 1; axis >= 0; axis-- {
		n := len(g.ranges[axis])
		point[g.paramNames[axis]] = g.ranges[axis][index%n]
		index /= n
	}
	return point
}

func (g *GridSearch) validate() error {
	if len(g.paramNames) != len(g.ranges) {
		return fmt.Errorf("%w: %d names, %d ranges", ErrAxisMismatch, len(g.paramNames), len(g.ranges))
	}
	for i, r := range g.ranges {
		if len(r) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyAxis, g.paramNames[i])
		}
	}
	return nil
}

// Search evaluates every grid point and returns the argmin. A point replaces
// the incumbent only when strictly lower, so the earliest point wins ties and
// NaN scores never win. The outcome does not depend on the worker count.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Result, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	var (
		values []float64
		err    error
	)
	if g.workers > 1 {
		values, err = g.evaluateParallel(ctx, objective)
	} else {
		values, err = g.evaluateSequential(ctx, objective)
	}
	if err != nil {
		return nil, err
	}

	best := math.Inf(1)
	bestIdx := -1
	for i, v := range values {
		if v < best {
			best = v
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return nil, ErrNoImprovement
	}

	return &Result{
		Best:      g.Point(bestIdx),
		Value:     best,
		Evaluated: len(values),
	}, nil
}

func (g *GridSearch) evaluateSequential(ctx context.Context, objective Objective) ([]float64, error) {
	values := make([]float64, g.Size())
	for i := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := g.evaluate(ctx, objective, i)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (g *GridSearch) evaluateParallel(ctx context.Context, objective Objective) ([]float64, error) {
	values := make([]float64, g.Size())

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i := range values {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			v, err := g.evaluate(egCtx, objective, i)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func (g *GridSearch) evaluate(ctx context.Context, objective Objective, index int) (float64, error) {
	point := g.Point(index)
	v, err := objective(ctx, point)
	if err != nil {
		return 0, fmt.Errorf("grid point %v: %w", point, err)
	}
	if g.observer != nil {
		g.observer(Evaluation{Index: index, Point: point, Value: v})
	}
	return v, nil
}
