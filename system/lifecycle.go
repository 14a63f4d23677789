package system

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/grid"
	"github.com/lixenwraith/pedsim/pedestrian"
	"github.com/lixenwraith/pedsim/status"
)

// LifecycleSystem records arrivals, recycles agents in density mode and removes devoured agents
// Runs last so population changes land at the end of the tick
type LifecycleSystem struct {
	statArrivals *atomic.Int64
	statDevoured *atomic.Int64
	statRecycled *atomic.Int64
}

// NewLifecycleSystem creates the lifecycle stage
func NewLifecycleSystem(w *engine.World) engine.System {
	return &LifecycleSystem{
		statArrivals: w.Status.Ints.Get(status.KeyArrivals),
		statDevoured: w.Status.Ints.Get(status.KeyDevoured),
		statRecycled: w.Status.Ints.Get(status.KeyRecycled),
	}
}

func (s *LifecycleSystem) Name() string  { return "lifecycle" }
func (s *LifecycleSystem) Priority() int { return PriorityLifecycle }

func (s *LifecycleSystem) Update(w *engine.World) {
	now := w.Clock.Now()
	opts := w.Options

	for k, p := range w.Population.Members() {
		if w.IsTarget(p.Cell) {
			if !p.Arrived {
				p.Arrived = true
				w.RecordArrival(p)
				s.statArrivals.Add(1)
				engine.Logf("pedestrian %d reached target %s after %s", p.ID, cellString(w, p.Cell), p.Traversal())
			}
			continue
		}

		if !opts.DensityMode {
			continue
		}
		x, y := w.Grid.Coord(p.Cell)
		if x < opts.RecycleColumn {
			continue
		}
		to, err := w.Grid.IndexOf(1, y)
		if err != nil {
			continue
		}
		w.Population.Replace(k, p.Respawn(to, now))
		forget(w, p.ID)
		s.statRecycled.Add(1)
		w.PushEvent(engine.EventRecycled, engine.RecyclePayload{PedestrianID: p.ID, From: p.Cell, To: to})
	}

	if !opts.Devour {
		return
	}
	removed := w.Population.RemoveIf(func(p *pedestrian.Pedestrian) bool {
		if !w.IsTarget(p.Cell) {
			return false
		}
		forget(w, p.ID)
		w.PushEvent(engine.EventDevoured, engine.ArrivalPayload{
			PedestrianID: p.ID,
			Cell:         p.Cell,
			Traversal:    p.Traversal(),
		})
		return true
	})
	s.statDevoured.Add(int64(removed))
}

func forget(w *engine.World, id int) {
	for _, a := range w.Areas {
		a.Forget(id)
	}
}

func cellString(w *engine.World, i grid.Index) string {
	x, y := w.Grid.Coord(i)
	return fmt.Sprintf("(%d,%d)", x, y)
}
