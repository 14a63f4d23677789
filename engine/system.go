package engine

// System is one stage of the tick, run in ascending Priority order
type System interface {
	Name() string
	Priority() int
	Update(w *World)
}

// Renderer draws the world after each tick and reports whether the run should continue
type Renderer interface {
	Draw(w *World)
	Running() bool
}
