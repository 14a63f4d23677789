package system

import (
	"sync/atomic"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/status"
)

// MeasurementSystem feeds every agent's cell to every measurement area
type MeasurementSystem struct {
	statObservations *atomic.Int64
}

// NewMeasurementSystem creates the measurement stage
func NewMeasurementSystem(w *engine.World) engine.System {
	return &MeasurementSystem{
		statObservations: w.Status.Ints.Get(status.KeyObservations),
	}
}

func (s *MeasurementSystem) Name() string  { return "measurement" }
func (s *MeasurementSystem) Priority() int { return PriorityMeasurement }

func (s *MeasurementSystem) Update(w *engine.World) {
	if len(w.Areas) == 0 {
		return
	}
	now := w.Clock.Now()
	for _, p := range w.Population.Members() {
		x, y := w.Grid.Coord(p.Cell)
		for _, a := range w.Areas {
			if obs, ok := a.Observe(p.ID, x, y, now); ok {
				s.statObservations.Add(1)
				w.PushEvent(engine.EventObservation, obs)
			}
		}
	}
}
