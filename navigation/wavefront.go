package navigation

import (
	"math"

	"github.com/lixenwraith/pedsim/grid"
)

// Edge costs for 8-connected propagation
const (
	costCardinal = 1.0
	costDiagonal = math.Sqrt2
	seedCost     = 1.0 // Strictly positive so distance never collides with zero-initialized state
)

// Wavefront floods outward from the target in breadth order
// Each pass relaxes every neighbor of the current frontier; improved cells form the next frontier
// Two edge weights only, so a layered relaxation converges without a priority queue
type Wavefront struct{}

func (Wavefront) Name() string {
	return "wavefront"
}

// Compute returns geodesic distance to target, +Inf for cells the flood never reaches
func (Wavefront) Compute(g *grid.Grid, target grid.Index, isBlocked WallChecker) []float64 {
	n := g.Len()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = unset
	}
	dist[target] = seedCost

	// Generation stamps dedupe the next frontier without clearing a set each pass
	queued := make([]int, n)
	gen := 1

	frontier := make([]grid.Index, 0, 64)
	next := make([]grid.Index, 0, 64)
	frontier = append(frontier, target)

	for len(frontier) > 0 {
		gen++
		next = next[:0]

		for _, c := range frontier {
			for _, nb := range g.Available(c) {
				if nb == c || isBlocked(nb) {
					continue
				}

				cand := dist[c] + EdgeCost(g, c, nb)
				if cand < dist[nb] {
					dist[nb] = cand
					if queued[nb] != gen {
						queued[nb] = gen
						next = append(next, nb)
					}
				}
			}
		}

		frontier, next = next, frontier
	}

	return dist
}

// EdgeCost returns the propagation weight between two adjacent cells
func EdgeCost(g *grid.Grid, a, b grid.Index) float64 {
	ax, ay := g.Coord(a)
	bx, by := g.Coord(b)
	if ax != bx && ay != by {
		return costDiagonal
	}
	return costCardinal
}
