// Package analysis characterizes simulated or observed population cycles.
//
//   - [PowerSpectrum] / [DominantPeriod]: frequency content of a series
//   - [UpCrossings] / [MeanPeriod]: cycle timing from threshold crossings
//   - [NewPhasePortrait]: prey vs predator trajectory rendered as ASCII
//
// # Cycle Detection
//
// A predator-prey orbit crosses its equilibrium level once upward per cycle:
//
//	times := analysis.UpCrossings(traj.Time, traj.Prey, 1000)
//	period, ok := analysis.MeanPeriod(times)
package analysis
