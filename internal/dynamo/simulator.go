package dynamo

import (
	"context"
	"fmt"
)

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1024

type Simulator struct {
	dyn        System
	integrator Integrator
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
	}
}

// Run integrates x0 for cfg.Steps fixed steps of cfg.Dt. The result always
// holds the initial state, so a complete run records Steps+1 samples.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d values, system expects %d",
			ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	result := &Result{
		States: make([]State, 0, cfg.Steps+1),
		Times:  make([]float64, 0, cfg.Steps+1),
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x)
	result.Times = append(result.Times, t)

	for i := 0; i < cfg.Steps; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}
		}

		newX := s.integrator.Step(s.dyn, x, t, cfg.Dt)

		if cfg.ValidateState && !newX.IsValid() {
			return result, &SimulationError{Step: i, Time: t, State: newX, Wrapped: ErrInvalidState}
		}

		x = newX
		t += cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, x)
		result.Times = append(result.Times, t)
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrParameterBounds, cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrParameterBounds, cfg.Steps)
	}
	return nil
}
