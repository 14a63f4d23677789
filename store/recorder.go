package store

import (
	"context"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/measure"
)

// Recorder persists arrival and observation events of one run as they are dispatched
// Write failures are logged and counted, they never stop the run
type Recorder struct {
	store  *Store
	runID  string
	Failed int
}

// NewRecorder creates a recorder writing under runID
func NewRecorder(s *Store, runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

func (r *Recorder) EventTypes() []engine.EventType {
	return []engine.EventType{engine.EventArrival, engine.EventObservation}
}

func (r *Recorder) HandleEvent(w *engine.World, ev engine.Event) {
	ctx := context.Background()
	var err error
	switch p := ev.Payload.(type) {
	case engine.ArrivalPayload:
		err = r.store.AddArrival(ctx, r.runID, engine.Arrival{
			PedestrianID: p.PedestrianID,
			Traversal:    p.Traversal,
			Tick:         ev.Tick,
			At:           ev.At,
		})
	case measure.Observation:
		err = r.store.AddObservations(ctx, r.runID, []measure.Observation{p})
	}
	if err != nil {
		r.Failed++
		engine.Logf("run %s: failed to record %s: %v", r.runID, ev.Type, err)
	}
}
