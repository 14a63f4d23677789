package maze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/pedsim/maze"
)

func TestGenerate_Deterministic(t *testing.T) {
	o := maze.Options{Width: 31, Height: 15, Braiding: 0.3, Seed: 42}
	a, err := maze.Generate(o)
	require.NoError(t, err)
	b, err := maze.Generate(o)
	require.NoError(t, err)
	assert.Equal(t, a.Walls, b.Walls)
	assert.NotEmpty(t, a.Walls)

	o.Seed = 43
	c, err := maze.Generate(o)
	require.NoError(t, err)
	assert.NotEqual(t, a.Walls, c.Walls)
}

func TestGenerate_WallsStayInterior(t *testing.T) {
	for _, dims := range [][2]int{{20, 10}, {21, 11}, {4, 4}} {
		l, err := maze.Generate(maze.Options{Width: dims[0], Height: dims[1], Seed: 7})
		require.NoError(t, err)
		for _, w := range l.Walls {
			assert.Greater(t, w.X, 1, "%v entry column must stay open", dims)
			assert.Less(t, w.X, dims[0]-1, "%v exit column must stay open", dims)
			assert.Greater(t, w.Y, 0)
			assert.Less(t, w.Y, dims[1])
		}
	}
}

func TestGenerate_EntryReachesExit(t *testing.T) {
	for _, braid := range []float64{0, 0.5, 1} {
		l, err := maze.Generate(maze.Options{Width: 24, Height: 12, Braiding: braid, Seed: 3})
		require.NoError(t, err)
		for y := 1; y < l.Height; y++ {
			path := l.Path(maze.Point{X: 1, Y: y}, maze.Point{X: l.Width - 1, Y: l.Height - 1 - (y - 1)})
			require.NotNil(t, path, "braid %.1f row %d", braid, y)
			assert.Equal(t, maze.Point{X: 1, Y: y}, path[0])
		}
	}
}

func TestGenerate_BraidingOnlyOpens(t *testing.T) {
	perfect, err := maze.Generate(maze.Options{Width: 41, Height: 21, Seed: 11})
	require.NoError(t, err)
	braided, err := maze.Generate(maze.Options{Width: 41, Height: 21, Braiding: 1, Seed: 11})
	require.NoError(t, err)

	assert.Less(t, len(braided.Walls), len(perfect.Walls))
	for _, w := range braided.Walls {
		assert.False(t, perfect.Open(w.X, w.Y), "braiding closed %v", w)
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := maze.Generate(maze.Options{Width: 3, Height: 10})
	assert.ErrorIs(t, err, maze.ErrTooSmall)

	_, err = maze.Generate(maze.Options{Width: 10, Height: 10, Braiding: 1.5})
	assert.Error(t, err)
}

func TestPath_Blocked(t *testing.T) {
	l, err := maze.Generate(maze.Options{Width: 12, Height: 8, Seed: 1})
	require.NoError(t, err)
	require.NotEmpty(t, l.Walls)
	w := l.Walls[0]
	assert.Nil(t, l.Path(maze.Point{X: 1, Y: 1}, w))
	assert.Nil(t, l.Path(maze.Point{X: 0, Y: 0}, maze.Point{X: 1, Y: 1}))

	single := l.Path(maze.Point{X: 1, Y: 1}, maze.Point{X: 1, Y: 1})
	assert.Equal(t, []maze.Point{{X: 1, Y: 1}}, single)
}
