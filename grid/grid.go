package grid

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Index addresses a cell in the flat cell arena
type Index int

// None marks an absent cell reference
const None Index = -1

// Direction vectors for Moore neighbors, order: N, NE, E, SE, S, SW, W, NW
// Neighbor enumeration order is part of the movement tie-break contract
var DirVectors = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Cell is a single lattice position
// Border and neighbor topology are fixed at construction
type Cell struct {
	X, Y   int
	Border bool

	neighbors []Index
	available []Index // self + neighbors minus border, filled on first use
}

// Neighbors returns the Moore neighbors assigned at construction, empty for border cells
func (c *Cell) Neighbors() []Index {
	return c.neighbors
}

// Grid owns (Width+1)*(Height+1) cells, the outer ring being impassable border
type Grid struct {
	Width, Height int
	cols, rows    int
	cells         []Cell
}

// Build constructs the lattice and wires 8-neighbor adjacency for interior cells
func Build(width, height int) (*Grid, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	g := &Grid{
		Width:  width,
		Height: height,
		cols:   width + 1,
		rows:   height + 1,
	}
	g.cells = make([]Cell, g.cols*g.rows)

	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			g.cells[g.index(x, y)] = Cell{
				X:      x,
				Y:      y,
				Border: x == 0 || y == 0 || x == width || y == height,
			}
		}
	}

	for i := range g.cells {
		c := &g.cells[i]
		if c.Border {
			continue
		}
		c.neighbors = make([]Index, 0, len(DirVectors))
		for _, d := range DirVectors {
			c.neighbors = append(c.neighbors, g.index(c.X+d[0], c.Y+d[1]))
		}
	}

	return g, nil
}

func (g *Grid) index(x, y int) Index {
	return Index(y*g.cols + x)
}

// Len returns the total cell count including the border ring
func (g *Grid) Len() int {
	return len(g.cells)
}

// Valid reports whether (x,y) lies on the lattice, border included
func (g *Grid) Valid(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cols && y < g.rows
}

// Interior reports whether (x,y) is a passable non-border cell
func (g *Grid) Interior(x, y int) bool {
	return x > 0 && y > 0 && x < g.Width && y < g.Height
}

// IndexOf resolves a coordinate, rejecting positions off the lattice
func (g *Grid) IndexOf(x, y int) (Index, error) {
	if !g.Valid(x, y) {
		return None, fmt.Errorf("%w: (%d,%d) on %dx%d", ErrOutOfBounds, x, y, g.Width, g.Height)
	}
	return g.index(x, y), nil
}

// At returns the cell at (x,y), panics off the lattice
func (g *Grid) At(x, y int) *Cell {
	return &g.cells[g.index(x, y)]
}

// Cell returns the cell stored at i
func (g *Grid) Cell(i Index) *Cell {
	return &g.cells[i]
}

// Coord returns the lattice coordinate of i
func (g *Grid) Coord(i Index) (int, int) {
	c := &g.cells[i]
	return c.X, c.Y
}

// Point returns the cell center as a planar point
func (g *Grid) Point(i Index) r2.Point {
	c := &g.cells[i]
	return r2.Point{X: float64(c.X), Y: float64(c.Y)}
}

// Distance is the Euclidean distance between two cell centers
func (g *Grid) Distance(a, b Index) float64 {
	return g.Point(a).Sub(g.Point(b)).Norm()
}

// Available returns self followed by neighbors, border cells excluded
// Result is cached per cell; topology never changes so the cache never invalidates
// Not safe for concurrent first use
func (g *Grid) Available(i Index) []Index {
	c := &g.cells[i]
	if c.available != nil {
		return c.available
	}

	avail := make([]Index, 0, len(c.neighbors)+1)
	if !c.Border {
		avail = append(avail, i)
	}
	for _, n := range c.neighbors {
		if !g.cells[n].Border {
			avail = append(avail, n)
		}
	}
	c.available = avail
	return avail
}

// Each visits every cell index in arena order
func (g *Grid) Each(fn func(i Index, c *Cell)) {
	for i := range g.cells {
		fn(Index(i), &g.cells[i])
	}
}
