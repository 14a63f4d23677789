// Package status holds lock-free run metrics shared between the tick loop and observers
package status

import "sync/atomic"

// Metric keys written by the simulation
const (
	KeyTicks        = "engine.ticks"
	KeyPopulation   = "engine.population"
	KeySimSeconds   = "engine.sim_seconds"
	KeyMoves        = "movement.moves"
	KeyStuck        = "movement.stuck"
	KeyArrivals     = "lifecycle.arrivals"
	KeyDevoured     = "lifecycle.devoured"
	KeyRecycled     = "lifecycle.recycled"
	KeyObservations = "measure.observations"
	KeyRunID        = "run.id"
	KeyStrategy     = "run.strategy"
	KeyFinished     = "run.finished"
)

// Registry groups metric maps by value type
// Systems cache cell pointers at construction and write atomics in Update
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns the number of metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot is a point-in-time copy of every metric
type Snapshot struct {
	Bools   map[string]bool    `json:"bools,omitempty"`
	Ints    map[string]int64   `json:"ints,omitempty"`
	Floats  map[string]float64 `json:"floats,omitempty"`
	Strings map[string]string  `json:"strings,omitempty"`
}

// Snapshot reads every metric; values are individually atomic, not mutually consistent
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Bools:   make(map[string]bool, r.Bools.Count()),
		Ints:    make(map[string]int64, r.Ints.Count()),
		Floats:  make(map[string]float64, r.Floats.Count()),
		Strings: make(map[string]string, r.Strings.Count()),
	}
	r.Bools.Range(func(k string, v *atomic.Bool) { s.Bools[k] = v.Load() })
	r.Ints.Range(func(k string, v *atomic.Int64) { s.Ints[k] = v.Load() })
	r.Floats.Range(func(k string, v *AtomicFloat) { s.Floats[k] = v.Get() })
	r.Strings.Range(func(k string, v *AtomicString) { s.Strings[k] = v.Load() })
	return s
}
