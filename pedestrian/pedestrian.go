package pedestrian

import (
	"math"
	"time"

	"github.com/lixenwraith/pedsim/grid"
)

// Unlimited is the step budget sentinel for agents without a cap
const Unlimited = -1

// Pedestrian is a mobile agent with its own movement clock
type Pedestrian struct {
	ID     int
	Cell   grid.Index
	Speed  float64 // Cells per second, > 0
	Budget int     // Remaining steps, Unlimited for no cap

	LastMove  time.Time // Clock reading of the last applied move
	FirstMove time.Time // Start of this agent's journey, set once
	NextMove  time.Time // Speculative, recomputed on every gate check

	Arrived bool // Reached a target at least once
	Stuck   bool // Last evaluation found no finite-cost candidate
}

// New places an agent at cell with its clock started at now
func New(id int, cell grid.Index, speed float64, budget int, now time.Time) *Pedestrian {
	return &Pedestrian{
		ID:        id,
		Cell:      cell,
		Speed:     speed,
		Budget:    budget,
		LastMove:  now,
		FirstMove: now,
		NextMove:  now,
	}
}

// travel converts a hop length into time at this agent's speed
// Hops longer than time.Duration can hold saturate, the gate then never opens
func (p *Pedestrian) travel(distance float64) time.Duration {
	ns := distance / p.Speed * float64(time.Second)
	if ns >= math.MaxInt64 || math.IsNaN(ns) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// TimeToMoveTo sets NextMove for the planned hop and reports whether now has reached it
func (p *Pedestrian) TimeToMoveTo(g *grid.Grid, candidate grid.Index, now time.Time) bool {
	p.NextMove = p.LastMove.Add(p.travel(g.Distance(p.Cell, candidate)))
	return !now.Before(p.NextMove)
}

// MoveInTime applies the hop when budget remains and enough time has elapsed
// Staying in place has zero length and always passes the gate
func (p *Pedestrian) MoveInTime(g *grid.Grid, candidate grid.Index, now time.Time) bool {
	if p.Budget == 0 {
		return false
	}
	if !p.TimeToMoveTo(g, candidate, now) {
		return false
	}

	p.Cell = candidate
	p.LastMove = now
	if p.Budget > 0 {
		p.Budget--
	}
	return true
}

// Traversal returns the time between the first and the latest movement
func (p *Pedestrian) Traversal() time.Duration {
	return p.LastMove.Sub(p.FirstMove)
}

// Respawn returns a fresh instance at cell carrying identity, speed and budget
func (p *Pedestrian) Respawn(cell grid.Index, now time.Time) *Pedestrian {
	return New(p.ID, cell, p.Speed, p.Budget, now)
}
