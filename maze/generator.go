// Package maze generates obstacle layouts for scenarios
//
// The layout shares the scenario grid's frame: columns 0 and width, rows 0 and
// height are the border ring and never appear in the output. Passages are
// carved on odd coordinates by a seeded recursive backtracker, so the same
// Options always produce the same walls. The entry column x=1 and the exit
// column x=width-1 are kept fully open for spawns and targets.
package maze

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrTooSmall indicates an interior that cannot hold a single corridor
var ErrTooSmall = errors.New("maze: interior too small")

// Point is an interior cell coordinate
type Point struct {
	X, Y int
}

// Options configures generation
type Options struct {
	Width, Height int // Scenario dimensions, border ring included

	// Braiding is the chance in [0,1] that a dead end is opened into a loop.
	// 0 yields a perfect maze, 1 removes nearly every dead end.
	Braiding float64

	Seed int64
}

// Layout is a generated interior
type Layout struct {
	Width, Height int
	Walls         []Point // Row-major order

	open [][]bool // [y][x], border ring included
}

// Generate carves a maze into the interior described by o
func Generate(o Options) (*Layout, error) {
	if o.Width < 4 || o.Height < 4 {
		return nil, fmt.Errorf("%w: %dx%d, need at least 4x4", ErrTooSmall, o.Width, o.Height)
	}
	if o.Braiding < 0 || o.Braiding > 1 {
		return nil, fmt.Errorf("maze: braiding %.2f not in [0,1]", o.Braiding)
	}

	l := &Layout{Width: o.Width, Height: o.Height}
	l.open = make([][]bool, o.Height+1)
	for y := range l.open {
		l.open[y] = make([]bool, o.Width+1)
	}

	rng := rand.New(rand.NewSource(o.Seed))
	l.carve(Point{1, 1}, rng)
	if o.Braiding > 0 {
		l.braid(o.Braiding, rng)
	}

	for y := 1; y < o.Height; y++ {
		l.open[y][1] = true
		l.open[y][o.Width-1] = true
	}

	for y := 1; y < o.Height; y++ {
		for x := 1; x < o.Width; x++ {
			if !l.open[y][x] {
				l.Walls = append(l.Walls, Point{x, y})
			}
		}
	}
	return l, nil
}

// Open reports whether (x,y) is a passage; the border ring is never open
func (l *Layout) Open(x, y int) bool {
	if x <= 0 || y <= 0 || x >= l.Width || y >= l.Height {
		return false
	}
	return l.open[y][x]
}

var (
	jumps = [4]Point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}
	steps = [4]Point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
)

// inner reports whether (x,y) may be carved by the backtracker
func (l *Layout) inner(x, y int) bool {
	return x > 0 && y > 0 && x < l.Width && y < l.Height
}

func (l *Layout) carve(start Point, rng *rand.Rand) {
	stack := []Point{start}
	l.open[start.Y][start.X] = true

	var candidates [4]Point
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		n := 0
		for _, d := range jumps {
			nx, ny := cur.X+d.X, cur.Y+d.Y
			if l.inner(nx, ny) && !l.open[ny][nx] {
				candidates[n] = d
				n++
			}
		}
		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.Intn(n)]
		l.open[cur.Y+d.Y/2][cur.X+d.X/2] = true
		next := Point{cur.X + d.X, cur.Y + d.Y}
		l.open[next.Y][next.X] = true
		stack = append(stack, next)
	}
}

// braid opens a wall next to dead ends with the given probability
// A wall is only removed when that creates no 2x2 open plaza and no free-standing pillar
func (l *Layout) braid(p float64, rng *rand.Rand) {
	var candidates [4]Point
	for y := 1; y < l.Height; y += 2 {
		for x := 1; x < l.Width; x += 2 {
			if !l.open[y][x] || l.exits(x, y) != 1 || rng.Float64() >= p {
				continue
			}

			n := 0
			for _, d := range jumps {
				nx, ny := x+d.X, y+d.Y
				wx, wy := x+d.X/2, y+d.Y/2
				if l.inner(nx, ny) && l.open[ny][nx] && !l.open[wy][wx] && l.safeToOpen(wx, wy) {
					candidates[n] = Point{wx, wy}
					n++
				}
			}
			if n > 0 {
				c := candidates[rng.Intn(n)]
				l.open[c.Y][c.X] = true
			}
		}
	}
}

func (l *Layout) exits(x, y int) int {
	n := 0
	for _, d := range steps {
		if l.Open(x+d.X, y+d.Y) {
			n++
		}
	}
	return n
}

func (l *Layout) safeToOpen(x, y int) bool {
	o := l.Open
	if (o(x-1, y-1) && o(x, y-1) && o(x-1, y)) ||
		(o(x, y-1) && o(x+1, y-1) && o(x+1, y)) ||
		(o(x-1, y) && o(x-1, y+1) && o(x, y+1)) ||
		(o(x+1, y) && o(x, y+1) && o(x+1, y+1)) {
		return false
	}

	for _, d := range steps {
		wx, wy := x+d.X, y+d.Y
		if !l.inner(wx, wy) || l.open[wy][wx] {
			continue
		}
		linked := false
		for _, d2 := range steps {
			nx, ny := wx+d2.X, wy+d2.Y
			if nx == x && ny == y {
				continue
			}
			if !l.Open(nx, ny) {
				linked = true
				break
			}
		}
		if !linked {
			return false
		}
	}
	return true
}

// Path returns a shortest 4-connected passage route from a to b, ends included
// Returns nil when either end is a wall or b cannot be reached
func (l *Layout) Path(a, b Point) []Point {
	if !l.Open(a.X, a.Y) || !l.Open(b.X, b.Y) {
		return nil
	}

	from := map[Point]Point{a: a}
	queue := []Point{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == b {
			var path []Point
			for p := b; p != a; p = from[p] {
				path = append(path, p)
			}
			path = append(path, a)
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, d := range steps {
			next := Point{cur.X + d.X, cur.Y + d.Y}
			if _, seen := from[next]; seen || !l.Open(next.X, next.Y) {
				continue
			}
			from[next] = cur
			queue = append(queue, next)
		}
	}
	return nil
}
