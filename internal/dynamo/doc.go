// Package dynamo provides the core simulation primitives for ODE models.
//
// The package defines the fundamental interfaces and types for fixed-step
// numerical simulation of ordinary differential equations:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: single-step numerical integrator
//   - [Simulator]: orchestrates a fixed number of integration steps
//
// # Example
//
//	dyn := models.NewLotkaVolterra(1, 1, 1, 1)
//	s := dynamo.New(dyn, integrators.NewEuler())
//	result, _ := s.Run(ctx, dynamo.State{1, 2}, dynamo.Config{Dt: 0.001, Steps: 100_000})
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Parallel callers build one
// Simulator per goroutine; models and integrators are cheap to construct.
package dynamo
