// Package config loads and validates TOML scenario files
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/pedsim/maze"
	"github.com/lixenwraith/pedsim/navigation"
	"github.com/lixenwraith/pedsim/pedestrian"
	"github.com/lixenwraith/pedsim/physics"
)

// Defaults applied to omitted fields
const (
	DefaultSpeed        = 1.0
	DefaultStrategy     = "euclidean"
	DefaultTickInterval = 100 * time.Millisecond
)

// Duration is a time.Duration written as a Go duration string ("250ms", "2m")
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidValue, b)
	}
	*d = Duration(v)
	return nil
}

// Point is an interior cell coordinate
type Point struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

// Pedestrian is a spawn entry, zero speed takes the scenario default
type Pedestrian struct {
	X     int     `toml:"x"`
	Y     int     `toml:"y"`
	Speed float64 `toml:"speed,omitempty"`
}

// Wall is an axis-aligned or diagonal run of obstacle cells, ends inclusive
type Wall struct {
	X1 int `toml:"x1"`
	Y1 int `toml:"y1"`
	X2 int `toml:"x2"`
	Y2 int `toml:"y2"`
}

// Area is a measurement rectangle, traversed from the first corner's column to the second's
type Area struct {
	Name string `toml:"name"`
	X1   int    `toml:"x1"`
	Y1   int    `toml:"y1"`
	X2   int    `toml:"x2"`
	Y2   int    `toml:"y2"`
}

// Density configures recycling agents back to the entry column
type Density struct {
	Enabled       bool     `toml:"enabled"`
	RecycleColumn int      `toml:"recycle_column"`
	Duration      Duration `toml:"duration"`
}

// Maze fills the interior with generated walls, columns 1 and width-1 stay open
// A zero seed is replaced by a time-derived one so the resolved scenario replays
type Maze struct {
	Seed     int64   `toml:"seed"`
	Braiding float64 `toml:"braiding"`
}

// Scenario is a complete simulation setup
type Scenario struct {
	Name   string `toml:"name,omitempty"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	Strategy     string   `toml:"strategy"`
	DefaultSpeed float64  `toml:"default_speed"`
	MaxSteps     int      `toml:"max_steps"` // Per-agent step budget, 0 for unlimited
	TickInterval Duration `toml:"tick_interval"`
	MaxTicks     uint64   `toml:"max_ticks"` // 0 for unlimited
	RMax         float64  `toml:"r_max"`

	Devour              bool `toml:"devour"`
	EndOnReachedTargets bool `toml:"end_on_reached_targets"`
	Verbose             bool `toml:"verbose"`

	Density Density `toml:"density"`
	Maze    *Maze   `toml:"maze,omitempty"`

	Pedestrians       []Pedestrian `toml:"pedestrians"`
	Targets           []Point      `toml:"targets"`
	Obstacles         []Point      `toml:"obstacles"`
	Walls             []Wall       `toml:"walls"`
	MeasurementPoints []Point      `toml:"measurement_points"`
	Areas             []Area       `toml:"areas"`
}

// Load reads, defaults and validates the scenario at path
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes TOML strictly, unknown keys are errors
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: unknown keys\n%s", ErrInvalidValue, strict.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%w: line %d column %d: %v", ErrInvalidValue, row, col, derr)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal encodes the scenario back to TOML
func (s *Scenario) Marshal() ([]byte, error) {
	return toml.Marshal(s)
}

// ApplyDefaults fills omitted optional fields
func (s *Scenario) ApplyDefaults() {
	if s.Strategy == "" {
		s.Strategy = DefaultStrategy
	}
	if s.DefaultSpeed == 0 {
		s.DefaultSpeed = DefaultSpeed
	}
	if s.TickInterval == 0 {
		s.TickInterval = Duration(DefaultTickInterval)
	}
	if s.RMax == 0 {
		s.RMax = physics.DefaultRMax
	}
	for i := range s.Pedestrians {
		if s.Pedestrians[i].Speed == 0 {
			s.Pedestrians[i].Speed = s.DefaultSpeed
		}
	}
	for i := range s.Areas {
		if s.Areas[i].Name == "" {
			s.Areas[i].Name = fmt.Sprintf("area-%d", i)
		}
	}
	if s.Maze != nil && s.Maze.Seed == 0 {
		s.Maze.Seed = time.Now().UnixNano()
	}
}

// Validate reports every problem found, joined
func (s *Scenario) Validate() error {
	var errs []error
	add := func(err error) { errs = append(errs, err) }

	if s.Width == 0 {
		add(fmt.Errorf("%w: width", ErrMissingField))
	} else if s.Width < 2 {
		add(fmt.Errorf("%w: width %d, need at least 2", ErrInvalidValue, s.Width))
	}
	if s.Height == 0 {
		add(fmt.Errorf("%w: height", ErrMissingField))
	} else if s.Height < 2 {
		add(fmt.Errorf("%w: height %d, need at least 2", ErrInvalidValue, s.Height))
	}
	if len(errs) > 0 {
		// Coordinates cannot be checked without a grid
		return errors.Join(errs...)
	}

	if _, err := navigation.StrategyByName(s.Strategy); err != nil {
		add(fmt.Errorf("strategy: %w", err))
	}
	if s.DefaultSpeed <= 0 {
		add(fmt.Errorf("%w: default_speed %v", ErrInvalidValue, s.DefaultSpeed))
	}
	if s.MaxSteps < 0 {
		add(fmt.Errorf("%w: max_steps %d", ErrInvalidValue, s.MaxSteps))
	}
	if s.TickInterval <= 0 {
		add(fmt.Errorf("%w: tick_interval %s", ErrInvalidValue, time.Duration(s.TickInterval)))
	}
	if s.RMax <= 0 {
		add(fmt.Errorf("%w: r_max %v", ErrInvalidValue, s.RMax))
	}

	if len(s.Targets) == 0 {
		add(fmt.Errorf("%w: targets", ErrMissingField))
	}
	for i, p := range s.Pedestrians {
		s.checkPoint(add, fmt.Sprintf("pedestrians[%d]", i), p.X, p.Y)
		if p.Speed <= 0 {
			add(fmt.Errorf("%w: pedestrians[%d].speed %v", ErrInvalidValue, i, p.Speed))
		}
	}
	for i, p := range s.Targets {
		s.checkPoint(add, fmt.Sprintf("targets[%d]", i), p.X, p.Y)
	}
	for i, p := range s.Obstacles {
		s.checkPoint(add, fmt.Sprintf("obstacles[%d]", i), p.X, p.Y)
	}
	for i, p := range s.MeasurementPoints {
		s.checkPoint(add, fmt.Sprintf("measurement_points[%d]", i), p.X, p.Y)
	}
	for i, w := range s.Walls {
		s.checkPoint(add, fmt.Sprintf("walls[%d] start", i), w.X1, w.Y1)
		s.checkPoint(add, fmt.Sprintf("walls[%d] end", i), w.X2, w.Y2)
		if dx, dy := abs(w.X2-w.X1), abs(w.Y2-w.Y1); dx != 0 && dy != 0 && dx != dy {
			add(fmt.Errorf("%w: walls[%d] must be horizontal, vertical or diagonal", ErrInvalidValue, i))
		}
	}
	names := make(map[string]bool, len(s.Areas))
	for i, a := range s.Areas {
		s.checkPoint(add, fmt.Sprintf("areas[%d] first corner", i), a.X1, a.Y1)
		s.checkPoint(add, fmt.Sprintf("areas[%d] second corner", i), a.X2, a.Y2)
		if names[a.Name] {
			add(fmt.Errorf("%w: duplicate area name %q", ErrInvalidValue, a.Name))
		}
		names[a.Name] = true
	}

	if l, err := s.mazeLayout(); err != nil {
		add(fmt.Errorf("%w: %v", ErrInvalidValue, err))
	} else if l != nil {
		for i, p := range s.Pedestrians {
			if l.Open(p.X, p.Y) || !inInterior(s, p.X, p.Y) {
				continue
			}
			add(fmt.Errorf("%w: pedestrians[%d] (%d,%d) on a maze wall", ErrInvalidValue, i, p.X, p.Y))
		}
		for i, p := range s.Targets {
			if l.Open(p.X, p.Y) || !inInterior(s, p.X, p.Y) {
				continue
			}
			add(fmt.Errorf("%w: targets[%d] (%d,%d) on a maze wall", ErrInvalidValue, i, p.X, p.Y))
		}
	}

	if s.Density.Enabled {
		if s.Density.RecycleColumn < 2 || s.Density.RecycleColumn >= s.Width {
			add(fmt.Errorf("%w: density.recycle_column %d not in [2,%d]", ErrOutOfBounds, s.Density.RecycleColumn, s.Width-1))
		}
		if s.Density.Duration < 0 {
			add(fmt.Errorf("%w: density.duration %s", ErrInvalidValue, time.Duration(s.Density.Duration)))
		}
	}

	return errors.Join(errs...)
}

func (s *Scenario) checkPoint(add func(error), field string, x, y int) {
	if x < 1 || y < 1 || x >= s.Width || y >= s.Height {
		add(fmt.Errorf("%w: %s (%d,%d) outside interior of %dx%d", ErrOutOfBounds, field, x, y, s.Width, s.Height))
	}
}

// Budget returns the per-agent step budget
func (s *Scenario) Budget() int {
	if s.MaxSteps == 0 {
		return pedestrian.Unlimited
	}
	return s.MaxSteps
}

// ObstacleCells returns single obstacles followed by every cell of every wall
func (s *Scenario) ObstacleCells() []Point {
	out := make([]Point, 0, len(s.Obstacles))
	out = append(out, s.Obstacles...)
	if l, err := s.mazeLayout(); err == nil && l != nil {
		for _, w := range l.Walls {
			out = append(out, Point{X: w.X, Y: w.Y})
		}
	}
	for _, w := range s.Walls {
		dx, dy := sign(w.X2-w.X1), sign(w.Y2-w.Y1)
		steps := max(abs(w.X2-w.X1), abs(w.Y2-w.Y1))
		for k := 0; k <= steps; k++ {
			out = append(out, Point{X: w.X1 + k*dx, Y: w.Y1 + k*dy})
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func inInterior(s *Scenario, x, y int) bool {
	return x >= 1 && y >= 1 && x < s.Width && y < s.Height
}

func (s *Scenario) mazeLayout() (*maze.Layout, error) {
	if s.Maze == nil {
		return nil, nil
	}
	return maze.Generate(maze.Options{
		Width:    s.Width,
		Height:   s.Height,
		Braiding: s.Maze.Braiding,
		Seed:     s.Maze.Seed,
	})
}
