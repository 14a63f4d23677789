package engine

import "sync/atomic"

// Headless is a renderer that draws nothing and logs progress every ProgressEvery ticks
type Headless struct {
	ProgressEvery uint64

	closed atomic.Bool
}

// Draw logs a progress line on multiples of ProgressEvery
func (h *Headless) Draw(w *World) {
	if h.ProgressEvery == 0 || w.Tick() == 0 || w.Tick()%h.ProgressEvery != 0 {
		return
	}
	Logf("tick=%d population=%d arrivals=%d sim=%s", w.Tick(), w.Population.Len(), len(w.Arrivals), w.Elapsed())
}

// Running is true until Close
func (h *Headless) Running() bool {
	return !h.closed.Load()
}

// Close makes the next Run iteration stop
func (h *Headless) Close() {
	h.closed.Store(true)
}
