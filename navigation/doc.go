// Package navigation computes the static potential agents descend.
//
// Two interchangeable strategies produce per-target cost arrays: Euclidean
// (straight-line distance, obstacles ignored) and Wavefront (8-connected flood
// fill seeded at 1, edge weights 1 and √2). InitCosts merges targets by minimum
// and pins obstacle and measurement-point cells to the Infeasible sentinel.
package navigation
