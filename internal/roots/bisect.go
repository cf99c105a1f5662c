// Package roots finds and samples roots of scalar functions.
package roots

import (
	"errors"
	"fmt"
	"math"
)

// DefaultPrecision is the interval width at which bisection stops.
const DefaultPrecision = 1e-3

// maxIterations caps bisection; 200 halvings exhaust float64 resolution.
const maxIterations = 200

var (
	ErrNoBracket     = errors.New("roots: no sign change over interval")
	ErrPrecision     = errors.New("roots: precision must be positive")
	ErrInterval      = errors.New("roots: left bound exceeds right bound")
	ErrNoConvergence = errors.New("roots: bisection did not converge")
)

type Func func(x float64) float64

// Solve bisects [left, right] until the interval is narrower than precision
// and returns the last midpoint, or returns early on an exact zero.
//
// An interval that is already narrower than precision yields its midpoint
// without evaluating f. The endpoints must bracket a root: f(left) and
// f(right) of opposite sign, or either of them exactly zero.
func Solve(f Func, left, right, precision float64) (float64, error) {
	if !(precision > 0) {
		return 0, fmt.Errorf("%w: %g", ErrPrecision, precision)
	}
	if left > right {
		return 0, fmt.Errorf("%w: [%g, %g]", ErrInterval, left, right)
	}
	if right-left < precision {
		return (left + right) / 2, nil
	}

	fl, fr := f(left), f(right)
	switch {
	case fl == 0:
		return left, nil
	case fr == 0:
		return right, nil
	case !(fl*fr < 0):
		return 0, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrNoBracket, left, fl, right, fr)
	}

	var middle float64
	for i := 0; right-left >= precision; i++ {
		if i == maxIterations {
			return middle, fmt.Errorf("%w after %d iterations", ErrNoConvergence, i)
		}

		middle = (right + left) / 2
		fm := f(middle)

		switch {
		case fm == 0:
			return middle, nil
		case fl*fm < 0:
			right, fr = middle, fm
		case fr*fm < 0:
			left, fl = middle, fm
		default:
			// NaN at the midpoint; the sign test cannot pick a side.
			return middle, fmt.Errorf("%w: f(%g)=%g", ErrNoBracket, middle, fm)
		}
	}

	return middle, nil
}

// Sample evaluates f at start, start+step, ... up to but excluding end.
// Non-finite values (poles, ln of non-positives) come back as NaN.
func Sample(f Func, start, end, step float64) (xs, ys []float64, err error) {
	if !(step > 0) {
		return nil, nil, fmt.Errorf("roots: step must be positive, got %g", step)
	}
	if end <= start {
		return nil, nil, nil
	}

	n := int(math.Ceil((end - start) / step))
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := range xs {
		x := start + float64(i)*step
		xs[i] = x
		y := f(x)
		if math.IsInf(y, 0) {
			y = math.NaN()
		}
		ys[i] = y
	}
	return xs, ys, nil
}
