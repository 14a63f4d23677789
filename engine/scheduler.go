package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/pedsim/status"
)

// DefaultTickInterval is the simulated time per tick when none is configured
const DefaultTickInterval = 100 * time.Millisecond

// StopReason explains why Run returned
type StopReason int

const (
	StopNone StopReason = iota
	StopCancelled
	StopRendererClosed
	StopPopulationEmpty
	StopDurationElapsed
	StopMaxTicks
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopCancelled:
		return "cancelled"
	case StopRendererClosed:
		return "renderer closed"
	case StopPopulationEmpty:
		return "population empty"
	case StopDurationElapsed:
		return "duration elapsed"
	case StopMaxTicks:
		return "max ticks"
	default:
		return "unknown"
	}
}

// Scheduler drives the world one tick at a time
// Each tick: advance clock, run systems, dispatch events, publish metrics, draw
type Scheduler struct {
	world    *World
	systems  []System
	router   *EventRouter
	renderer Renderer

	interval time.Duration
	maxTicks uint64
	realtime bool

	statTicks      *atomic.Int64
	statPopulation *atomic.Int64
	statSimSeconds *status.AtomicFloat
	statFinished   *atomic.Bool
}

// NewScheduler creates a scheduler stepping w by interval, non-positive means DefaultTickInterval
func NewScheduler(w *World, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		world:          w,
		router:         NewEventRouter(),
		renderer:       &Headless{},
		interval:       interval,
		statTicks:      w.Status.Ints.Get(status.KeyTicks),
		statPopulation: w.Status.Ints.Get(status.KeyPopulation),
		statSimSeconds: w.Status.Floats.Get(status.KeySimSeconds),
		statFinished:   w.Status.Bools.Get(status.KeyFinished),
	}
}

// AddSystem inserts sys keeping ascending priority, equal priorities keep insertion order
func (s *Scheduler) AddSystem(sys System) {
	s.systems = append(s.systems, sys)
	for i := len(s.systems) - 1; i > 0 && s.systems[i-1].Priority() > s.systems[i].Priority(); i-- {
		s.systems[i-1], s.systems[i] = s.systems[i], s.systems[i-1]
	}
	if h, ok := sys.(EventHandler); ok {
		s.router.Register(h)
	}
}

// Systems returns a copy of the ordered system list
func (s *Scheduler) Systems() []System {
	out := make([]System, len(s.systems))
	copy(out, s.systems)
	return out
}

// RegisterEventHandler routes events of h's types to h
func (s *Scheduler) RegisterEventHandler(h EventHandler) {
	s.router.Register(h)
}

// SetRenderer replaces the renderer, nil restores Headless
func (s *Scheduler) SetRenderer(r Renderer) {
	if r == nil {
		r = &Headless{}
	}
	s.renderer = r
}

// SetMaxTicks caps Run, 0 for unlimited
func (s *Scheduler) SetMaxTicks(n uint64) {
	s.maxTicks = n
}

// SetRealtime paces Run to one tick per interval of wall time
func (s *Scheduler) SetRealtime(on bool) {
	s.realtime = on
}

// Interval returns the tick interval
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// World returns the scheduled world
func (s *Scheduler) World() *World {
	return s.world
}

// Step performs exactly one tick
func (s *Scheduler) Step() {
	w := s.world
	if adv, ok := w.Clock.(Advancer); ok {
		adv.Advance(s.interval)
	}
	w.tick++

	for _, sys := range s.systems {
		sys.Update(w)
	}

	s.router.Dispatch(w, w.drainEvents())

	s.statTicks.Store(int64(w.tick))
	s.statPopulation.Store(int64(w.Population.Len()))
	s.statSimSeconds.Set(w.Elapsed().Seconds())

	s.renderer.Draw(w)
}

// Check evaluates the stop conditions without stepping
func (s *Scheduler) Check(ctx context.Context) StopReason {
	w := s.world
	switch {
	case ctx.Err() != nil:
		return StopCancelled
	case !s.renderer.Running():
		return StopRendererClosed
	case w.Options.EndOnReachedTargets && w.Population.Len() == 0:
		return StopPopulationEmpty
	case w.Options.DensityMode && w.Options.DensityDuration > 0 && w.Elapsed() >= w.Options.DensityDuration:
		return StopDurationElapsed
	case s.maxTicks > 0 && w.tick >= s.maxTicks:
		return StopMaxTicks
	}
	return StopNone
}

// Run steps until a stop condition holds and returns it
// A run without any reachable stop condition only ends through ctx or the renderer
func (s *Scheduler) Run(ctx context.Context) StopReason {
	var tick <-chan time.Time
	if s.realtime {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.renderer.Draw(s.world)

	for {
		if reason := s.Check(ctx); reason != StopNone {
			s.statFinished.Store(true)
			Logf("run stopped after %d ticks: %s", s.world.tick, reason)
			return reason
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				continue
			case <-tick:
			}
		}

		s.Step()
	}
}
