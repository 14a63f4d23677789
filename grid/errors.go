package grid

import "errors"

var (
	// ErrInvalidDimensions indicates a grid without any interior cell
	ErrInvalidDimensions = errors.New("grid: width and height must be at least 2")
	// ErrOutOfBounds indicates a coordinate outside the lattice
	ErrOutOfBounds = errors.New("grid: coordinate out of bounds")
)
