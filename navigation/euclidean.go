package navigation

import (
	"github.com/lixenwraith/pedsim/grid"
)

// Euclidean scores every cell by straight-line distance to the target, ignoring obstacles
type Euclidean struct{}

func (Euclidean) Name() string {
	return "euclidean"
}

// Compute returns the distance from each cell center to the target
func (Euclidean) Compute(g *grid.Grid, target grid.Index, _ WallChecker) []float64 {
	out := make([]float64, g.Len())
	for i := range out {
		out[i] = g.Distance(grid.Index(i), target)
	}
	return out
}
