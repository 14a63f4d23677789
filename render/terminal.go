// Package render draws a running world to the terminal with tcell
package render

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/grid"
	"github.com/lixenwraith/pedsim/navigation"
)

// cellWidth is the number of terminal columns per grid cell, keeps cells roughly square
const cellWidth = 2

var arrows = [navigation.DirCount]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

var (
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleTarget   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	stylePoint    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleAgent    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleArrived  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStuck    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	areaBg        = tcell.NewRGBColor(20, 30, 70)
)

// Terminal renders to a tcell screen and stops the run on Esc, q or Ctrl-C
// 'v' toggles the cost overlay
type Terminal struct {
	screen  tcell.Screen
	running atomic.Bool
	verbose atomic.Bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewTerminal opens the controlling terminal
func NewTerminal(verbose bool) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return NewTerminalWithScreen(screen, verbose)
}

// NewTerminalWithScreen renders to an existing screen, used with tcell simulation screens
func NewTerminalWithScreen(screen tcell.Screen, verbose bool) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	screen.HideCursor()

	t := &Terminal{
		screen: screen,
		done:   make(chan struct{}),
	}
	t.running.Store(true)
	t.verbose.Store(verbose)

	go t.pollEvents()
	return t, nil
}

func (t *Terminal) pollEvents() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
				t.running.Store(false)
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				t.running.Store(false)
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'v':
				t.verbose.Store(!t.verbose.Load())
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// Running is false once the user asked to quit
func (t *Terminal) Running() bool {
	return t.running.Load()
}

// Verbose reports whether the cost overlay is shown
func (t *Terminal) Verbose() bool {
	return t.verbose.Load()
}

// Close restores the terminal
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		t.running.Store(false)
		t.screen.Fini()
		<-t.done
	})
}

// Draw paints the grid, markers, agents and a status line
func (t *Terminal) Draw(w *engine.World) {
	s := t.screen
	s.Clear()

	verbose := t.verbose.Load() && w.Flow != nil
	maxCost := 0.0
	if verbose {
		for _, c := range w.Costs.Costs {
			if c < navigation.Infeasible && c > maxCost {
				maxCost = c
			}
		}
	}

	w.Grid.Each(func(i grid.Index, c *grid.Cell) {
		r, style := t.cellGlyph(w, i, c, verbose, maxCost)
		t.put(c.X, c.Y, r, style)
	})

	for _, p := range w.Population.Members() {
		x, y := w.Grid.Coord(p.Cell)
		style := styleAgent
		switch {
		case p.Stuck:
			style = styleStuck
		case p.Arrived:
			style = styleArrived
		}
		if w.Mark(p.Cell)&engine.MarkArea != 0 {
			style = style.Background(areaBg)
		}
		t.put(x, y, '●', style)
	}

	status := fmt.Sprintf(" tick %d  sim %.1fs  agents %d  arrived %d  [q]uit [v]erbose ",
		w.Tick(), w.Elapsed().Seconds(), w.Population.Len(), len(w.Arrivals))
	for k, r := range status {
		s.SetContent(k, w.Grid.Height+1, r, nil, styleStatus)
	}

	s.Show()
}

func (t *Terminal) put(x, y int, r rune, style tcell.Style) {
	t.screen.SetContent(x*cellWidth, y, r, nil, style)
	t.screen.SetContent(x*cellWidth+1, y, ' ', nil, style)
}

func (t *Terminal) cellGlyph(w *engine.World, i grid.Index, c *grid.Cell, verbose bool, maxCost float64) (rune, tcell.Style) {
	if c.Border {
		return '█', styleBorder
	}

	mark := w.Mark(i)
	style := tcell.StyleDefault
	if mark&engine.MarkArea != 0 {
		style = style.Background(areaBg)
	}

	switch {
	case mark&engine.MarkObstacle != 0:
		return '#', styleObstacle
	case mark&engine.MarkTarget != 0:
		return '◎', styleTarget
	case mark&engine.MarkMeasurementPoint != 0:
		return '+', stylePoint
	}

	if !verbose || !w.Costs.Reachable(i) {
		return '·', style.Foreground(tcell.ColorDimGray)
	}

	dir := w.Flow.GetDirection(i)
	r := '·'
	if dir >= 0 && dir < navigation.DirCount {
		r = arrows[dir]
	}
	return r, style.Foreground(heat(w.Costs.At(i), maxCost))
}

// heat maps a cost to a green (near) to red (far) gradient
func heat(cost, maxCost float64) tcell.Color {
	f := 0.0
	if maxCost > 0 {
		f = math.Min(1, cost/maxCost)
	}
	return tcell.NewRGBColor(int32(60+195*f), int32(220-180*f), 60)
}
