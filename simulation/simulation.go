// Package simulation assembles a runnable world from a scenario
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/pedsim/config"
	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/grid"
	"github.com/lixenwraith/pedsim/measure"
	"github.com/lixenwraith/pedsim/navigation"
	"github.com/lixenwraith/pedsim/pedestrian"
	"github.com/lixenwraith/pedsim/physics"
	"github.com/lixenwraith/pedsim/status"
	"github.com/lixenwraith/pedsim/system"
)

var (
	// ErrNoScenario indicates New was called with a nil scenario
	ErrNoScenario = errors.New("simulation: no scenario")
	// ErrBlockedSpawn indicates a pedestrian placed on an obstacle or measurement point
	ErrBlockedSpawn = errors.New("simulation: pedestrian spawns on a blocked cell")
)

// Option customizes New
type Option func(*options)

type options struct {
	clock    engine.Clock
	registry *status.Registry
	runID    string
}

// WithClock replaces the default simulated clock
func WithClock(c engine.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRegistry publishes metrics into reg
func WithRegistry(reg *status.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithRunID fixes the run identifier instead of generating one
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// Simulation is a world, its systems and its scheduler
type Simulation struct {
	id       string
	scenario *config.Scenario
	world    *engine.World
	sched    *engine.Scheduler
	reason   engine.StopReason
}

// New validates the scenario and builds everything needed to run it
func New(sc *config.Scenario, opts ...Option) (*Simulation, error) {
	if sc == nil {
		return nil, ErrNoScenario
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = engine.NewSimClock(time.Now().UTC().Truncate(time.Second))
	}
	if o.registry == nil {
		o.registry = status.NewRegistry()
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	g, err := grid.Build(sc.Width, sc.Height)
	if err != nil {
		return nil, err
	}
	strategy, err := navigation.StrategyByName(sc.Strategy)
	if err != nil {
		return nil, err
	}

	w := engine.NewWorld(g, o.clock, o.registry)
	w.Repulsion = physics.Repulsion{RMax: sc.RMax, OccupiedPenalty: physics.DefaultOccupiedPenalty}
	w.Options = engine.Options{
		Devour:              sc.Devour,
		EndOnReachedTargets: sc.EndOnReachedTargets,
		DensityMode:         sc.Density.Enabled,
		RecycleColumn:       sc.Density.RecycleColumn,
		DensityDuration:     time.Duration(sc.Density.Duration),
		Verbose:             sc.Verbose,
	}

	targets, err := cells(g, sc.Targets)
	if err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}
	obstacles, err := cells(g, sc.ObstacleCells())
	if err != nil {
		return nil, fmt.Errorf("obstacles: %w", err)
	}
	points, err := cells(g, sc.MeasurementPoints)
	if err != nil {
		return nil, fmt.Errorf("measurement points: %w", err)
	}
	w.SetTargets(targets)
	w.SetObstacles(obstacles)
	w.SetMeasurementPoints(points)
	for _, a := range sc.Areas {
		w.AddArea(measure.NewArea(a.Name, a.X1, a.Y1, a.X2, a.Y2))
	}

	w.Costs, err = navigation.InitCosts(g, strategy, targets, w.Blocked())
	if err != nil {
		return nil, fmt.Errorf("cost field: %w", err)
	}
	w.Flow = navigation.NewFlowField(g, w.Costs)

	now := o.clock.Now()
	for i, ps := range sc.Pedestrians {
		cell, err := g.IndexOf(ps.X, ps.Y)
		if err != nil {
			return nil, fmt.Errorf("pedestrians[%d]: %w", i, err)
		}
		if m := w.Mark(cell); m&(engine.MarkObstacle|engine.MarkMeasurementPoint) != 0 {
			return nil, fmt.Errorf("%w: pedestrians[%d] at (%d,%d)", ErrBlockedSpawn, i, ps.X, ps.Y)
		}
		w.Population.Add(pedestrian.New(-1, cell, ps.Speed, sc.Budget(), now))
	}

	sched := engine.NewScheduler(w, time.Duration(sc.TickInterval))
	sched.AddSystem(system.NewMovementSystem(w))
	sched.AddSystem(system.NewMeasurementSystem(w))
	sched.AddSystem(system.NewLifecycleSystem(w))
	sched.SetMaxTicks(sc.MaxTicks)

	o.registry.Strings.Get(status.KeyRunID).Store(o.runID)
	o.registry.Strings.Get(status.KeyStrategy).Store(strategy.Name())
	o.registry.Ints.Get(status.KeyPopulation).Store(int64(w.Population.Len()))

	unreachable := 0
	for _, p := range w.Population.Members() {
		if !w.Costs.Reachable(p.Cell) {
			unreachable++
		}
	}
	if unreachable > 0 {
		engine.Logf("run %s: %d pedestrians start with no route to any target", o.runID, unreachable)
	}

	return &Simulation{
		id:       o.runID,
		scenario: sc,
		world:    w,
		sched:    sched,
	}, nil
}

func cells(g *grid.Grid, pts []config.Point) ([]grid.Index, error) {
	out := make([]grid.Index, 0, len(pts))
	for _, p := range pts {
		i, err := g.IndexOf(p.X, p.Y)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// ID returns the run identifier
func (s *Simulation) ID() string { return s.id }

// Scenario returns the scenario the run was built from
func (s *Simulation) Scenario() *config.Scenario { return s.scenario }

// World returns the simulated world
func (s *Simulation) World() *engine.World { return s.world }

// Scheduler returns the tick scheduler
func (s *Simulation) Scheduler() *engine.Scheduler { return s.sched }

// Status returns the metric registry
func (s *Simulation) Status() *status.Registry { return s.world.Status }

// SetRenderer replaces the renderer, nil for headless
func (s *Simulation) SetRenderer(r engine.Renderer) { s.sched.SetRenderer(r) }

// OnEvent routes events of the given types to fn
func (s *Simulation) OnEvent(fn func(w *engine.World, ev engine.Event), types ...engine.EventType) {
	s.sched.RegisterEventHandler(engine.OnEvent(fn, types...))
}

// Step performs exactly one tick
func (s *Simulation) Step() { s.sched.Step() }

// Run ticks until a stop condition holds
func (s *Simulation) Run(ctx context.Context) engine.StopReason {
	engine.Logf("run %s: %dx%d grid, %d pedestrians, %d targets, strategy %s",
		s.id, s.scenario.Width, s.scenario.Height, s.world.Population.Len(), len(s.world.Targets), s.world.Costs.Strategy)
	s.reason = s.sched.Run(ctx)
	return s.reason
}

// Observations returns every area's observations keyed by area name
func (s *Simulation) Observations() map[string][]measure.Observation {
	out := make(map[string][]measure.Observation, len(s.world.Areas))
	for _, a := range s.world.Areas {
		out[a.Name] = a.Observations()
	}
	return out
}
