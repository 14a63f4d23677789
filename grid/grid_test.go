package grid_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/pedsim/grid"
)

func TestBuild_InvalidDimensions(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
	}{
		{"ZeroWidth", 0, 5},
		{"OneHeight", 5, 1},
		{"Negative", -3, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := grid.Build(tc.width, tc.height)
			require.ErrorIs(t, err, grid.ErrInvalidDimensions)
		})
	}
}

func TestBuild_BorderRing(t *testing.T) {
	g, err := grid.Build(5, 4)
	require.NoError(t, err)
	assert.Equal(t, 6*5, g.Len())

	for y := 0; y <= 4; y++ {
		for x := 0; x <= 5; x++ {
			want := x == 0 || y == 0 || x == 5 || y == 4
			assert.Equal(t, want, g.At(x, y).Border, "cell (%d,%d)", x, y)
			assert.Equal(t, !want, g.Interior(x, y), "interior (%d,%d)", x, y)
		}
	}
}

func TestBuild_NeighborsMooreOrder(t *testing.T) {
	g, err := grid.Build(6, 6)
	require.NoError(t, err)

	c := g.At(3, 3)
	require.Len(t, c.Neighbors(), 8)

	want := [][2]int{{3, 2}, {4, 2}, {4, 3}, {4, 4}, {3, 4}, {2, 4}, {2, 3}, {2, 2}}
	for k, n := range c.Neighbors() {
		x, y := g.Coord(n)
		assert.Equal(t, want[k], [2]int{x, y}, "neighbor %d", k)
	}

	assert.Empty(t, g.At(0, 3).Neighbors(), "border cells carry no neighbors")
}

func TestNeighbors_Symmetric(t *testing.T) {
	g, err := grid.Build(7, 5)
	require.NoError(t, err)

	g.Each(func(i grid.Index, c *grid.Cell) {
		for _, n := range c.Neighbors() {
			nc := g.Cell(n)
			if nc.Border {
				continue
			}
			assert.Contains(t, nc.Neighbors(), i, "neighbor relation must be symmetric")
		}
	})
}

func TestAvailable_ExcludesBorderAndStartsWithSelf(t *testing.T) {
	g, err := grid.Build(5, 5)
	require.NoError(t, err)

	corner, err := g.IndexOf(1, 1)
	require.NoError(t, err)

	avail := g.Available(corner)
	require.NotEmpty(t, avail)
	assert.Equal(t, corner, avail[0], "staying in place is always the first candidate")
	assert.Len(t, avail, 4, "corner interior cell keeps self, E, SE, S")
	for _, a := range avail {
		assert.False(t, g.Cell(a).Border)
	}

	// Cached slice is returned on subsequent calls
	again := g.Available(corner)
	assert.Equal(t, &avail[0], &again[0])

	center, _ := g.IndexOf(2, 2)
	assert.Len(t, g.Available(center), 9)
}

func TestIndexOf_OutOfBounds(t *testing.T) {
	g, err := grid.Build(3, 3)
	require.NoError(t, err)

	_, err = g.IndexOf(4, 1)
	assert.ErrorIs(t, err, grid.ErrOutOfBounds)
	_, err = g.IndexOf(-1, 1)
	assert.ErrorIs(t, err, grid.ErrOutOfBounds)

	i, err := g.IndexOf(3, 3)
	require.NoError(t, err)
	assert.True(t, g.Cell(i).Border)
}

func TestDistance(t *testing.T) {
	g, err := grid.Build(10, 10)
	require.NoError(t, err)

	a, _ := g.IndexOf(1, 1)
	b, _ := g.IndexOf(4, 5)
	c, _ := g.IndexOf(2, 2)

	assert.InDelta(t, 5.0, g.Distance(a, b), 1e-12)
	assert.InDelta(t, math.Sqrt2, g.Distance(a, c), 1e-12)
	assert.Zero(t, g.Distance(a, a))
}
