package system

import (
	"math"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/grid"
	"github.com/lixenwraith/pedsim/navigation"
	"github.com/lixenwraith/pedsim/pedestrian"
)

// ChooseMove returns the candidate cell with the lowest static plus repulsion cost
// Ties go to the earliest candidate, so staying put wins an even contest
// stuck is true when every candidate is infeasible; the returned cell is then p.Cell
func ChooseMove(w *engine.World, p *pedestrian.Pedestrian) (next grid.Index, stuck bool) {
	self := -1
	positions := make([]grid.Index, 0, w.Population.Len())
	for k, other := range w.Population.Members() {
		if other == p {
			self = k
		}
		positions = append(positions, other.Cell)
	}
	return chooseAmong(w, p, positions, self)
}

// chooseAmong evaluates p against precomputed live positions, positions[self] being p itself
func chooseAmong(w *engine.World, p *pedestrian.Pedestrian, positions []grid.Index, self int) (grid.Index, bool) {
	candidates := w.Grid.Available(p.Cell)
	dynamic := w.Repulsion.Costs(w.Grid, candidates, self, positions)

	best := p.Cell
	bestCost := math.Inf(1)
	for k, c := range candidates {
		total := w.Costs.At(c) + dynamic[k]
		if total < bestCost {
			best = c
			bestCost = total
		}
	}

	if bestCost >= navigation.Infeasible {
		return p.Cell, true
	}
	return best, false
}
