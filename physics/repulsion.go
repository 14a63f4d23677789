package physics

import (
	"math"

	"github.com/lixenwraith/pedsim/grid"
)

// Repulsion defaults
const (
	DefaultRMax            = 2.0
	DefaultOccupiedPenalty = 1e5
)

// Repulsion is the dynamic cost other agents add to candidate cells
// Evaluated from live positions every call, no state carried between ticks
type Repulsion struct {
	RMax            float64 // Cutoff radius, only strict d < RMax contributes
	OccupiedPenalty float64 // Added when another agent stands on the candidate
}

// DefaultRepulsion is the profile used when a scenario does not override it
var DefaultRepulsion = Repulsion{
	RMax:            DefaultRMax,
	OccupiedPenalty: DefaultOccupiedPenalty,
}

// Kernel returns the smooth repulsion contribution at distance d
// exp(1/(d²−r²)) tends to 0 as d approaches RMax and grows monotonically toward d=0
func (r Repulsion) Kernel(d float64) float64 {
	if d >= r.RMax {
		return 0
	}
	return math.Exp(1 / (d*d - r.RMax*r.RMax))
}

// Pair returns the cost one other agent at cell other adds to candidate
func (r Repulsion) Pair(g *grid.Grid, candidate, other grid.Index) float64 {
	if candidate == other {
		return r.OccupiedPenalty
	}
	return r.Kernel(g.Distance(candidate, other))
}

// Costs returns one additive cost per candidate, same order as candidates
// positions holds every live agent's cell; positions[self] is skipped, pass -1 to skip none
func (r Repulsion) Costs(g *grid.Grid, candidates []grid.Index, self int, positions []grid.Index) []float64 {
	out := make([]float64, len(candidates))
	for k, cand := range candidates {
		for j, pos := range positions {
			if j == self {
				continue
			}
			out[k] += r.Pair(g, cand, pos)
		}
	}
	return out
}
