package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lixenwraith/pedsim/engine"
)

var (
	// ErrDuplicate indicates a second service registered under one name
	ErrDuplicate = errors.New("service: already registered")
	// ErrDependency indicates a missing or circular dependency
	ErrDependency = errors.New("service: dependency")
)

// Hub owns the registered services and their start order
type Hub struct {
	mu       sync.Mutex
	services map[string]Service
	order    []string // Registration order, keeps the sort stable
	started  []string
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds a service
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.services[name] = svc
	h.order = append(h.order, name)
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.services[name]
	return svc, ok
}

// Started returns the names of running services in start order
func (h *Hub) Started() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.started...)
}

// StartAll starts every service after its dependencies
// On failure, already started services are stopped in reverse order
func (h *Hub) StartAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sorted, err := h.sort()
	if err != nil {
		return err
	}

	h.started = nil
	for _, name := range sorted {
		if err := h.services[name].Start(ctx); err != nil {
			err = fmt.Errorf("service %s start failed: %w", name, err)
			if stopErr := h.stopStarted(); stopErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", stopErr))
			}
			return err
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops started services in reverse order and reports every failure
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopStarted()
}

func (h *Hub) stopStarted() error {
	var errs []error
	for i := len(h.started) - 1; i >= 0; i-- {
		name := h.started[i]
		if err := h.services[name].Stop(); err != nil {
			engine.Logf("service %s stop: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	h.started = nil
	return errors.Join(errs...)
}

// sort computes start order with Kahn's algorithm, ties in registration order
func (h *Hub) sort() ([]string, error) {
	inDegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)

	for _, name := range h.order {
		for _, dep := range h.services[name].Dependencies() {
			if _, ok := h.services[dep]; !ok {
				return nil, fmt.Errorf("%w: %s needs unregistered %s", ErrDependency, name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for _, name := range h.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]string, 0, len(h.services))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)
		for _, d := range dependents[name] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(result) != len(h.services) {
		return nil, fmt.Errorf("%w: circular", ErrDependency)
	}
	return result, nil
}
