package navigation

import (
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/pedsim/grid"
)

// Infeasible marks cells that must never be routed through
// Exceeds any path cost on supported grid sizes plus any finite repulsion sum
const Infeasible = 1e9

// unset is the pre-propagation value, distinct from Infeasible so strategies can tell them apart
var unset = math.Inf(1)

// WallChecker returns true if cell blocks propagation
type WallChecker func(i grid.Index) bool

// Strategy computes the per-target static potential
// Returned slice holds one candidate cost per cell, +Inf where the target never reaches
type Strategy interface {
	Name() string
	Compute(g *grid.Grid, target grid.Index, isBlocked WallChecker) []float64
}

// StrategyByName resolves a configured strategy selector
func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euclidean", "distance", "":
		return Euclidean{}, nil
	case "wavefront", "dijkstra":
		return Wavefront{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// CostField stores the static navigation cost of every cell
// Written once by InitCosts, read-only afterwards
type CostField struct {
	Strategy string
	Costs    []float64
}

// At returns the static cost of cell i
func (f *CostField) At(i grid.Index) float64 {
	return f.Costs[i]
}

// Reachable reports whether cell i has a finite route to some target
func (f *CostField) Reachable(i grid.Index) bool {
	return f.Costs[i] < Infeasible
}

// InitCosts stamps blocked cells, propagates every target and merges by minimum
// Blocked covers obstacles and measurement points; they are restamped after propagation
func InitCosts(g *grid.Grid, s Strategy, targets, blocked []grid.Index) (*CostField, error) {
	if s == nil {
		return nil, ErrNoStrategy
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	f := &CostField{
		Strategy: s.Name(),
		Costs:    make([]float64, g.Len()),
	}
	for i := range f.Costs {
		f.Costs[i] = unset
	}

	stamp := func() {
		for _, b := range blocked {
			f.Costs[b] = Infeasible
		}
	}
	stamp()

	isBlocked := func(i grid.Index) bool {
		return f.Costs[i] == Infeasible
	}

	for _, t := range targets {
		candidates := s.Compute(g, t, isBlocked)
		for i, c := range candidates {
			// Infeasible cells are never lowered, other cells only decrease
			if f.Costs[i] == Infeasible {
				continue
			}
			if c < f.Costs[i] {
				f.Costs[i] = c
			}
		}
	}

	// Cells no target reached keep the sentinel
	for i, c := range f.Costs {
		if math.IsInf(c, 1) {
			f.Costs[i] = Infeasible
		}
	}
	stamp()

	return f, nil
}
