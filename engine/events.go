package engine

import (
	"fmt"
	"time"

	"github.com/lixenwraith/pedsim/grid"
)

// EventType identifies a lifecycle or instrumentation event
type EventType int

const (
	// EventArrival is pushed once when an agent first stands on a target
	// Payload: ArrivalPayload
	EventArrival EventType = iota

	// EventDevoured is pushed when an arrived agent is removed from the population
	// Payload: ArrivalPayload
	EventDevoured

	// EventRecycled is pushed when density mode moves an agent back to the entry column
	// Payload: RecyclePayload
	EventRecycled

	// EventObservation is pushed for every completed area traversal
	// Payload: measure.Observation
	EventObservation

	// EventStuck is pushed when an agent first finds no finite-cost candidate
	// Payload: int pedestrian ID
	EventStuck
)

var eventNames = map[EventType]string{
	EventArrival:     "arrival",
	EventDevoured:    "devoured",
	EventRecycled:    "recycled",
	EventObservation: "observation",
	EventStuck:       "stuck",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is one queued notification, stamped with the tick and clock that produced it
type Event struct {
	Type    EventType
	Tick    uint64
	At      time.Time
	Payload any
}

// ArrivalPayload describes an agent reaching a target
type ArrivalPayload struct {
	PedestrianID int
	Cell         grid.Index
	Traversal    time.Duration
}

// RecyclePayload describes a density-mode respawn
type RecyclePayload struct {
	PedestrianID int
	From, To     grid.Index
}

// EventHandler receives routed events after all systems ran for the tick
type EventHandler interface {
	HandleEvent(w *World, ev Event)
	EventTypes() []EventType
}

// EventRouter fans queued events out to registered handlers in registration order
type EventRouter struct {
	handlers map[EventType][]EventHandler
}

// NewEventRouter creates an empty router
func NewEventRouter() *EventRouter {
	return &EventRouter{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Register adds handler for each of its declared types
func (r *EventRouter) Register(h EventHandler) {
	for _, t := range h.EventTypes() {
		r.handlers[t] = append(r.handlers[t], h)
	}
}

// HandlerCount returns how many handlers listen to t
func (r *EventRouter) HandlerCount(t EventType) int {
	return len(r.handlers[t])
}

// Dispatch delivers events in FIFO order
func (r *EventRouter) Dispatch(w *World, events []Event) {
	for _, ev := range events {
		for _, h := range r.handlers[ev.Type] {
			h.HandleEvent(w, ev)
		}
	}
}

// handlerFunc adapts a closure to EventHandler
type handlerFunc struct {
	types []EventType
	fn    func(w *World, ev Event)
}

func (h handlerFunc) HandleEvent(w *World, ev Event) { h.fn(w, ev) }
func (h handlerFunc) EventTypes() []EventType      { return h.types }

// OnEvent wraps fn as a handler for the given types
func OnEvent(fn func(w *World, ev Event), types ...EventType) EventHandler {
	return handlerFunc{types: types, fn: fn}
}
