package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/pedsim/config"
	"github.com/lixenwraith/pedsim/pedestrian"
)

const minimal = `
width = 10
height = 6
targets = [{ x = 8, y = 3 }]

[[pedestrians]]
x = 1
y = 3
`

func TestParse_Defaults(t *testing.T) {
	s, err := config.Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultStrategy, s.Strategy)
	assert.Equal(t, config.DefaultSpeed, s.DefaultSpeed)
	assert.Equal(t, config.Duration(config.DefaultTickInterval), s.TickInterval)
	assert.Equal(t, 2.0, s.RMax)
	assert.Equal(t, config.DefaultSpeed, s.Pedestrians[0].Speed)
	assert.Equal(t, pedestrian.Unlimited, s.Budget())
}

func TestParse_Full(t *testing.T) {
	data := `
name = "hall"
width = 12
height = 8
strategy = "wavefront"
default_speed = 1.5
max_steps = 30
tick_interval = "250ms"
max_ticks = 500
r_max = 3.0
devour = true
end_on_reached_targets = true
targets = [{ x = 10, y = 4 }]
obstacles = [{ x = 5, y = 5 }]
walls = [{ x1 = 6, y1 = 1, x2 = 6, y2 = 3 }]
measurement_points = [{ x = 2, y = 6 }]

[density]
enabled = true
recycle_column = 9
duration = "1m30s"

[[areas]]
x1 = 2
y1 = 1
x2 = 8
y2 = 7

[[pedestrians]]
x = 1
y = 2
speed = 0.7
`
	s, err := config.Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "wavefront", s.Strategy)
	assert.Equal(t, 30, s.Budget())
	assert.Equal(t, 250*time.Millisecond, time.Duration(s.TickInterval))
	assert.Equal(t, 90*time.Second, time.Duration(s.Density.Duration))
	assert.Equal(t, "area-0", s.Areas[0].Name)
	assert.Equal(t, 0.7, s.Pedestrians[0].Speed)

	want := []config.Point{{X: 5, Y: 5}, {X: 6, Y: 1}, {X: 6, Y: 2}, {X: 6, Y: 3}}
	if diff := cmp.Diff(want, s.ObstacleCells()); diff != "" {
		t.Errorf("obstacle cells mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown key", minimal + "\nteleport = true\n", config.ErrInvalidValue},
		{"missing width", "height = 5\ntargets = [{ x = 1, y = 1 }]", config.ErrMissingField},
		{"missing targets", "width = 5\nheight = 5", config.ErrMissingField},
		{"target on border", "width = 5\nheight = 5\ntargets = [{ x = 5, y = 2 }]", config.ErrOutOfBounds},
		{"unknown strategy", "strategy = \"teleport\"\n" + minimal, config.ErrUnknownStrategy},
		{"negative speed", "width = 5\nheight = 5\ntargets = [{ x = 3, y = 3 }]\n[[pedestrians]]\nx = 1\ny = 1\nspeed = -1", config.ErrInvalidValue},
		{"bad duration", "tick_interval = \"soon\"\n" + minimal, config.ErrInvalidValue},
		{"skewed wall", "walls = [{ x1 = 2, y1 = 1, x2 = 5, y2 = 2 }]\n" + minimal, config.ErrInvalidValue},
		{"recycle column", minimal + "\n[density]\nenabled = true\nrecycle_column = 10\n", config.ErrOutOfBounds},
		{"tiny grid", "width = 1\nheight = 5\ntargets = [{ x = 1, y = 1 }]", config.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	data := "width = 5\nheight = 5\nstrategy = \"x\"\ntargets = [{ x = 9, y = 9 }]"
	_, err := config.Parse([]byte(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownStrategy)
	assert.ErrorIs(t, err, config.ErrOutOfBounds)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.toml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Width)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	s, err := config.Parse([]byte(minimal))
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "100ms")

	back, err := config.Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(s, back, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExampleScenarios(t *testing.T) {
	paths, err := filepath.Glob("../scenarios/*.toml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		_, err := config.Load(p)
		assert.NoError(t, err, p)
	}
}

func TestParse_Maze(t *testing.T) {
	doc := `
width = 21
height = 11
strategy = "wavefront"
targets = [{ x = 20, y = 5 }]

[maze]
seed = 9
braiding = 0.4

[[pedestrians]]
x = 1
y = 3
`
	s, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, s.Maze)
	assert.Equal(t, int64(9), s.Maze.Seed)

	cells := s.ObstacleCells()
	require.NotEmpty(t, cells)
	for _, c := range cells {
		assert.Greater(t, c.X, 1)
		assert.Less(t, c.X, 20)
	}
	assert.Equal(t, cells, s.ObstacleCells(), "same seed, same walls")

	bad := strings.Replace(doc, "x = 1\ny = 3", "x = 2\ny = 2", 1)
	_, err = config.Parse([]byte(bad))
	assert.ErrorIs(t, err, config.ErrInvalidValue, "(2,2) is always a wall between lattice cells")

	_, err = config.Parse([]byte(strings.Replace(doc, "braiding = 0.4", "braiding = 2.0", 1)))
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestApplyDefaults_ResolvesMazeSeed(t *testing.T) {
	s := config.Scenario{Width: 10, Height: 6, Maze: &config.Maze{}}
	s.ApplyDefaults()
	assert.NotZero(t, s.Maze.Seed)
}
