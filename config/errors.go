package config

import (
	"errors"

	"github.com/lixenwraith/pedsim/navigation"
)

var (
	// ErrMissingField indicates a required scenario field is absent or zero
	ErrMissingField = errors.New("config: missing field")
	// ErrOutOfBounds indicates a coordinate outside the walkable interior
	ErrOutOfBounds = errors.New("config: coordinate out of bounds")
	// ErrInvalidValue indicates a field with an unusable value
	ErrInvalidValue = errors.New("config: invalid value")
	// ErrUnknownStrategy indicates an unrecognized cost strategy
	ErrUnknownStrategy = navigation.ErrUnknownStrategy
)
