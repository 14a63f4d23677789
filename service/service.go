// Package service manages long-lived infrastructure around a run: the store,
// the status API and the audio backend.
//
// Lifecycle:
//  1. Construction and Register
//  2. StartAll: Start in dependency order, rolled back on the first failure
//  3. [simulation runs]
//  4. StopAll: Stop in reverse start order
package service

import "context"

// Service is one piece of run infrastructure
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Start before this one
	Dependencies() []string

	// Start acquires resources and launches goroutines if any
	Start(ctx context.Context) error

	// Stop releases what Start acquired; only called after a successful Start
	Stop() error
}

// Func adapts start and stop closures into a Service
type Func struct {
	ID       string
	Requires []string
	OnStart  func(ctx context.Context) error
	OnStop   func() error
}

func (f *Func) Name() string           { return f.ID }
func (f *Func) Dependencies() []string { return f.Requires }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f *Func) Stop() error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop()
}
