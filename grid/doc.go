// Package grid provides the immutable cell lattice the simulation runs on.
//
// Cells live in a flat arena addressed by Index. Interior cells carry their
// eight Moore neighbors in N, NE, E, SE, S, SW, W, NW order; the outer ring of
// cells is border and never reachable. Agents and cost fields refer to cells by
// Index only, so the lattice has no back-references.
package grid
