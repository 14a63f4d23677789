package system

import (
	"sync/atomic"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/grid"
	"github.com/lixenwraith/pedsim/status"
)

// MovementSystem evaluates every agent in population order and applies gated moves
// Positions are refreshed as agents move, later agents see earlier agents' new cells
type MovementSystem struct {
	positions []grid.Index

	statMoves *atomic.Int64
	statStuck *atomic.Int64
}

// NewMovementSystem creates the movement stage
func NewMovementSystem(w *engine.World) engine.System {
	return &MovementSystem{
		statMoves: w.Status.Ints.Get(status.KeyMoves),
		statStuck: w.Status.Ints.Get(status.KeyStuck),
	}
}

func (s *MovementSystem) Name() string  { return "movement" }
func (s *MovementSystem) Priority() int { return PriorityMovement }

// Update moves each agent not yet standing on a target
func (s *MovementSystem) Update(w *engine.World) {
	now := w.Clock.Now()
	s.positions = w.Population.Positions(s.positions)

	for k, p := range w.Population.Members() {
		if w.IsTarget(p.Cell) {
			continue
		}

		next, stuck := chooseAmong(w, p, s.positions, k)
		if stuck {
			if !p.Stuck {
				p.Stuck = true
				s.statStuck.Add(1)
				w.PushEvent(engine.EventStuck, p.ID)
				engine.Logf("pedestrian %d stuck at %s", p.ID, cellString(w, p.Cell))
			}
			continue
		}
		p.Stuck = false

		from := p.Cell
		if p.MoveInTime(w.Grid, next, now) {
			s.positions[k] = p.Cell
			if p.Cell != from {
				s.statMoves.Add(1)
			}
		}
	}
}
