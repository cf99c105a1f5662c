package metrics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrLengthMismatch = errors.New("metrics: series length mismatch")
	ErrEmptySeries    = errors.New("metrics: empty series")
)

// MSE returns the mean squared difference between simulated and observed.
func MSE(simulated, observed []float64) (float64, error) {
	if len(simulated) != len(observed) {
		return 0, fmt.Errorf("%w: %d simulated vs %d observed", ErrLengthMismatch, len(simulated), len(observed))
	}
	if len(observed) == 0 {
		return 0, ErrEmptySeries
	}

	diff := make([]float64, len(observed))
	floats.SubTo(diff, simulated, observed)
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

// PairMSE sums the MSE of two simulated/observed series pairs. This is the
// score the predator-prey fit minimizes.
func PairMSE(simA, simB, obsA, obsB []float64) (float64, error) {
	a, err := MSE(simA, obsA)
	if err != nil {
		return 0, fmt.Errorf("first series: %w", err)
	}
	b, err := MSE(simB, obsB)
	if err != nil {
		return 0, fmt.Errorf("second series: %w", err)
	}
	return a + b, nil
}
