package navigation

import "errors"

var (
	// ErrUnknownStrategy indicates an unrecognized cost strategy selector
	ErrUnknownStrategy = errors.New("navigation: unknown cost strategy")
	// ErrNoStrategy indicates InitCosts was called without a strategy
	ErrNoStrategy = errors.New("navigation: no cost strategy")
	// ErrNoTargets indicates a cost field without any target to propagate from
	ErrNoTargets = errors.New("navigation: at least one target is required")
)
