package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Configurable is implemented by systems whose coefficients can be read and
// changed by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ApplyParams sets every named value on c, stopping at the first rejected
// name.
func ApplyParams(c Configurable, params map[string]float64) error {
	for name, v := range params {
		if err := c.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}

type Config struct {
	Dt    float64
	Steps int
	// ValidateState stops the run at the first NaN/Inf state. When false the
	// trajectory is recorded as computed, including non-finite values.
	ValidateState bool
}

type Result struct {
	States     []State
	Times      []float64
	StepsTaken int
}

// Component returns the i-th state variable over the whole run.
func (r *Result) Component(i int) []float64 {
	out := make([]float64, len(r.States))
	for k, s := range r.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
