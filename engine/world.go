package engine

import (
	"time"

	"github.com/lixenwraith/pedsim/grid"
	"github.com/lixenwraith/pedsim/measure"
	"github.com/lixenwraith/pedsim/navigation"
	"github.com/lixenwraith/pedsim/pedestrian"
	"github.com/lixenwraith/pedsim/physics"
	"github.com/lixenwraith/pedsim/status"
)

// Mark flags what a cell holds besides agents
type Mark uint8

const (
	MarkTarget Mark = 1 << iota
	MarkObstacle
	MarkMeasurementPoint
	MarkArea
)

// Options are the population policies chosen by the scenario
type Options struct {
	Devour              bool          // Remove agents standing on a target
	EndOnReachedTargets bool          // Stop once the population is empty
	DensityMode         bool          // Recycle agents reaching RecycleColumn back to column 1
	RecycleColumn       int           // Column at or beyond which density mode recycles
	DensityDuration     time.Duration // Density mode run length, 0 for unbounded
	Verbose             bool          // Draw cost overlay and flow arrows
}

// Arrival is one recorded target arrival
type Arrival struct {
	PedestrianID int           `json:"pedestrian_id"`
	Traversal    time.Duration `json:"traversal"`
	Tick         uint64        `json:"tick"`
	At           time.Time     `json:"at"`
}

// World is the shared state every system reads and mutates during a tick
// Owned by the scheduler goroutine; observers use Status and Area observation copies
type World struct {
	Grid       *grid.Grid
	Costs      *navigation.CostField
	Flow       *navigation.FlowField
	Population *pedestrian.Population
	Repulsion  physics.Repulsion
	Areas      []*measure.Area
	Clock      Clock
	Status     *status.Registry
	Options    Options

	Targets           []grid.Index
	Obstacles         []grid.Index
	MeasurementPoints []grid.Index

	Arrivals []Arrival

	marks   []Mark
	start   time.Time
	tick    uint64
	pending []Event
}

// NewWorld creates an empty world over g, its run clock starting at clock.Now()
func NewWorld(g *grid.Grid, clock Clock, reg *status.Registry) *World {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &World{
		Grid:       g,
		Population: pedestrian.NewPopulation(),
		Repulsion:  physics.DefaultRepulsion,
		Clock:      clock,
		Status:     reg,
		marks:      make([]Mark, g.Len()),
		start:      clock.Now(),
	}
}

func (w *World) mark(cells []grid.Index, m Mark) {
	for _, i := range cells {
		w.marks[i] |= m
	}
}

// SetTargets records target cells
func (w *World) SetTargets(cells []grid.Index) {
	w.Targets = cells
	w.mark(cells, MarkTarget)
}

// SetObstacles records obstacle cells
func (w *World) SetObstacles(cells []grid.Index) {
	w.Obstacles = cells
	w.mark(cells, MarkObstacle)
}

// SetMeasurementPoints records measurement point cells
func (w *World) SetMeasurementPoints(cells []grid.Index) {
	w.MeasurementPoints = cells
	w.mark(cells, MarkMeasurementPoint)
}

// AddArea registers a measurement area and marks its cells
func (w *World) AddArea(a *measure.Area) {
	w.Areas = append(w.Areas, a)
	w.Grid.Each(func(i grid.Index, c *grid.Cell) {
		if c.Border {
			return
		}
		if a.Bounds.X.Contains(float64(c.X)) && a.Bounds.Y.Contains(float64(c.Y)) {
			w.marks[i] |= MarkArea
		}
	})
}

// Blocked returns obstacles and measurement points, the cells stamped infeasible
func (w *World) Blocked() []grid.Index {
	out := make([]grid.Index, 0, len(w.Obstacles)+len(w.MeasurementPoints))
	out = append(out, w.Obstacles...)
	return append(out, w.MeasurementPoints...)
}

// Mark returns the flags of cell i
func (w *World) Mark(i grid.Index) Mark {
	return w.marks[i]
}

// IsTarget reports whether cell i is a target
func (w *World) IsTarget(i grid.Index) bool {
	return w.marks[i]&MarkTarget != 0
}

// Tick returns the number of completed ticks
func (w *World) Tick() uint64 {
	return w.tick
}

// Start returns the clock reading when the world was created
func (w *World) Start() time.Time {
	return w.start
}

// Elapsed returns simulated time since Start
func (w *World) Elapsed() time.Duration {
	return w.Clock.Now().Sub(w.start)
}

// PushEvent queues an event for dispatch at the end of the current tick
func (w *World) PushEvent(t EventType, payload any) {
	w.pending = append(w.pending, Event{
		Type:    t,
		Tick:    w.tick,
		At:      w.Clock.Now(),
		Payload: payload,
	})
}

// PendingEvents returns queued events without consuming them
func (w *World) PendingEvents() []Event {
	return w.pending
}

func (w *World) drainEvents() []Event {
	evs := w.pending
	w.pending = nil
	return evs
}

// RecordArrival appends an arrival and emits EventArrival
func (w *World) RecordArrival(p *pedestrian.Pedestrian) {
	a := Arrival{
		PedestrianID: p.ID,
		Traversal:    p.Traversal(),
		Tick:         w.tick,
		At:           w.Clock.Now(),
	}
	w.Arrivals = append(w.Arrivals, a)
	w.PushEvent(EventArrival, ArrivalPayload{
		PedestrianID: p.ID,
		Cell:         p.Cell,
		Traversal:    a.Traversal,
	})
}

// Traversals returns the traversal time of every recorded arrival
func (w *World) Traversals() []time.Duration {
	out := make([]time.Duration, len(w.Arrivals))
	for i, a := range w.Arrivals {
		out[i] = a.Traversal
	}
	return out
}
