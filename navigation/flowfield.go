package navigation

import (
	"github.com/lixenwraith/pedsim/grid"
)

// Direction constants for flow field
// Index into grid.DirVectors: N=0, NE=1, E=2, SE=3, S=4, SW=5, W=6, NW=7
const (
	DirNone   int8 = -1 // Blocked, border or unreachable
	DirTarget int8 = -2 // Local minimum, agents stop here
	DirN      int8 = 0
	DirNE     int8 = 1
	DirE      int8 = 2
	DirSE     int8 = 3
	DirS      int8 = 4
	DirSW     int8 = 5
	DirW      int8 = 6
	DirNW     int8 = 7
	DirCount  int8 = 8
)

// FlowField holds the steepest-descent direction of the static cost per cell
// Ignores repulsion; used for the verbose overlay and diagnostics only
type FlowField struct {
	Directions []int8
}

// NewFlowField derives per-cell directions from the static cost gradient
func NewFlowField(g *grid.Grid, f *CostField) *FlowField {
	ff := &FlowField{
		Directions: make([]int8, g.Len()),
	}

	g.Each(func(i grid.Index, c *grid.Cell) {
		ff.Directions[i] = DirNone
		if c.Border || !f.Reachable(i) {
			return
		}

		bestDir := DirTarget
		bestCost := f.Costs[i]

		for k, nb := range c.Neighbors() {
			if g.Cell(nb).Border {
				continue
			}
			if nc := f.Costs[nb]; nc < bestCost {
				bestCost = nc
				bestDir = int8(k)
			}
		}

		ff.Directions[i] = bestDir
	})

	return ff
}

// GetDirection returns flow direction at cell i
func (ff *FlowField) GetDirection(i grid.Index) int8 {
	if int(i) < 0 || int(i) >= len(ff.Directions) {
		return DirNone
	}
	return ff.Directions[i]
}
