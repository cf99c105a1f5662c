package models

import (
	"fmt"
	"math"

	"github.com/san-kum/lvfit/internal/dynamo"
)

// LotkaVolterra is the predator-prey system over state (prey, predator):
//
//	prey'     = prey * (alpha - beta*predator)
//	predator' = predator * (delta*prey - gamma)
type LotkaVolterra struct {
	Alpha float64 // prey growth rate
	Beta  float64 // predation rate
	Gamma float64 // predator death rate
	Delta float64 // predator growth per prey eaten
}

var (
	_ dynamo.System       = (*LotkaVolterra)(nil)
	_ dynamo.Configurable = (*LotkaVolterra)(nil)
)

func NewLotkaVolterra(alpha, beta, gamma, delta float64) *LotkaVolterra {
	return &LotkaVolterra{Alpha: alpha, Beta: beta, Gamma: gamma, Delta: delta}
}

func (lv *LotkaVolterra) StateDim() int { return 2 }

func (lv *LotkaVolterra) Derive(x dynamo.State, _ float64) dynamo.State {
	prey, predator := x[0], x[1]
	return dynamo.State{
		prey * (lv.Alpha - lv.Beta*predator),
		predator * (lv.Delta*prey - lv.Gamma),
	}
}

// DefaultState is the starting population used by the fitter.
func (lv *LotkaVolterra) DefaultState() dynamo.State { return dynamo.State{1.0, 2.0} }

// Equilibrium returns the non-trivial fixed point (gamma/delta, alpha/beta).
// ok is false when beta or delta is zero and the fixed point does not exist.
func (lv *LotkaVolterra) Equilibrium() (state dynamo.State, ok bool) {
	if lv.Beta == 0 || lv.Delta == 0 {
		return nil, false
	}
	return dynamo.State{lv.Gamma / lv.Delta, lv.Alpha / lv.Beta}, true
}

// Invariant is the quantity conserved by the exact flow:
//
//	V = delta*prey - gamma*ln(prey) + beta*predator - alpha*ln(predator)
//
// Explicit Euler lets it drift upward, which makes it a useful accuracy probe.
func (lv *LotkaVolterra) Invariant(x dynamo.State) float64 {
	prey, predator := x[0], x[1]
	return lv.Delta*prey - lv.Gamma*math.Log(prey) + lv.Beta*predator - lv.Alpha*math.Log(predator)
}

func (lv *LotkaVolterra) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha": lv.Alpha,
		"beta":  lv.Beta,
		"gamma": lv.Gamma,
		"delta": lv.Delta,
	}
}

func (lv *LotkaVolterra) SetParam(name string, value float64) error {
	switch name {
	case "alpha":
		lv.Alpha = value
	case "beta":
		lv.Beta = value
	case "gamma":
		lv.Gamma = value
	case "delta":
		lv.Delta = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
