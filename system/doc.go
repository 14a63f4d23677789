// Package system holds the per-tick stages: movement, measurement and population lifecycle
package system

// Priorities, lower runs first
const (
	PriorityMovement    = 10
	PriorityMeasurement = 20
	PriorityLifecycle   = 30
)
