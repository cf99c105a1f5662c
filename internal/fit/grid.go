package fit

import "fmt"

// Grid holds the candidate values for each coefficient.
type Grid struct {
	Alpha []float64 `json:"alpha" yaml:"alpha"`
	Beta  []float64 `json:"beta" yaml:"beta"`
	Gamma []float64 `json:"gamma" yaml:"gamma"`
	Delta []float64 `json:"delta" yaml:"delta"`
}

// DefaultGrid is {1/3, 2/3, 1, 4/3} on every axis.
func DefaultGrid() Grid {
	axis := func() []float64 { return []float64{1.0 / 3, 2.0 / 3, 1, 4.0 / 3} }
	return Grid{Alpha: axis(), Beta: axis(), Gamma: axis(), Delta: axis()}
}

// Axes returns the value lists in ParamNames order.
func (g Grid) Axes() [][]float64 {
	return [][]float64{g.Alpha, g.Beta, g.Gamma, g.Delta}
}

func (g Grid) Size() int {
	return len(g.Alpha) * len(g.Beta) * len(g.Gamma) * len(g.Delta)
}

func (g Grid) Validate() error {
	for i, axis := range g.Axes() {
		if len(axis) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyGrid, ParamNames[i])
		}
	}
	return nil
}
