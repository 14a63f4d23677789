package measure

import (
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r2"
)

// Observation is one completed traversal of an area
type Observation struct {
	Area         string    `json:"area"`
	PedestrianID int       `json:"pedestrian_id"`
	Speed        float64   `json:"speed"`   // Cells per second
	Density      float64   `json:"density"` // Occupants per cell at exit
	At           time.Time `json:"at"`
}

// Area is an axis-aligned measurement rectangle crossed from EntryX to ExitX
// Observe is driven by a single goroutine; observation reads are safe from others
type Area struct {
	Name          string
	EntryX, ExitX int
	Bounds        r2.Rect

	occupants map[int]time.Time // Pedestrian ID -> enter time
	density   float64

	mu           sync.RWMutex
	observations []Observation
}

// NewArea builds an area from two corner cells; the first corner's column is the entry edge
func NewArea(name string, x1, y1, x2, y2 int) *Area {
	return &Area{
		Name:   name,
		EntryX: x1,
		ExitX:  x2,
		Bounds: r2.RectFromPoints(
			r2.Point{X: float64(x1), Y: float64(y1)},
			r2.Point{X: float64(x2), Y: float64(y2)},
		),
		occupants: make(map[int]time.Time),
	}
}

// Length is the column distance between entry and exit edges
func (a *Area) Length() int {
	l := a.ExitX - a.EntryX
	if l < 0 {
		return -l
	}
	return l
}

// Extent is the number of cells covered by the rectangle
func (a *Area) Extent() int {
	size := a.Bounds.Size()
	return (int(size.X) + 1) * (int(size.Y) + 1)
}

// Density returns the live occupant count per cell
func (a *Area) Density() float64 {
	return a.density
}

// Occupants returns the live occupant count
func (a *Area) Occupants() int {
	return len(a.occupants)
}

// Inside reports whether pedestrian id entered and has not exited yet
func (a *Area) Inside(id int) bool {
	_, ok := a.occupants[id]
	return ok
}

func (a *Area) updateDensity() {
	extent := a.Extent()
	if extent <= 0 {
		a.density = 0
		return
	}
	a.density = float64(len(a.occupants)) / float64(extent)
}

// Observe feeds the current cell of pedestrian id
// Returns the completed observation when this call records an exit
func (a *Area) Observe(id, x, y int, now time.Time) (Observation, bool) {
	if !a.Bounds.Y.Contains(float64(y)) {
		return Observation{}, false
	}

	if x == a.EntryX {
		if _, ok := a.occupants[id]; !ok {
			a.occupants[id] = now
			a.updateDensity()
		}
	}

	if x != a.ExitX {
		return Observation{}, false
	}
	entered, ok := a.occupants[id]
	if !ok {
		return Observation{}, false
	}

	density := a.density
	delete(a.occupants, id)
	a.updateDensity()

	elapsed := math.Abs(now.Sub(entered).Seconds())
	if elapsed == 0 {
		// Entry and exit in the same instant, no observation yet
		return Observation{}, false
	}

	obs := Observation{
		Area:         a.Name,
		PedestrianID: id,
		Speed:        float64(a.Length()+1) / elapsed,
		Density:      density,
		At:           now,
	}

	a.mu.Lock()
	a.observations = append(a.observations, obs)
	a.mu.Unlock()

	return obs, true
}

// Forget drops an occupant without recording an observation
func (a *Area) Forget(id int) {
	if _, ok := a.occupants[id]; ok {
		delete(a.occupants, id)
		a.updateDensity()
	}
}

// Observations returns a copy of the observation log
func (a *Area) Observations() []Observation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Observation, len(a.observations))
	copy(out, a.observations)
	return out
}
