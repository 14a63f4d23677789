package simulation

import (
	"fmt"
	"io"
	"time"

	"github.com/lixenwraith/pedsim/measure"
	"github.com/lixenwraith/pedsim/status"
)

// AreaSummary is the outcome of one measurement area
type AreaSummary struct {
	Name         string       `json:"name"`
	Observations int          `json:"observations"`
	Fit          *measure.Fit `json:"fit,omitempty"`
}

// Summary describes a finished or in-progress run
type Summary struct {
	RunID      string                   `json:"run_id"`
	Scenario   string                   `json:"scenario"`
	Strategy   string                   `json:"strategy"`
	Reason     string                   `json:"reason"`
	Ticks      uint64                   `json:"ticks"`
	SimTime    time.Duration            `json:"sim_time"`
	Population int                      `json:"population"`
	Arrivals   int                      `json:"arrivals"`
	Devoured   int64                    `json:"devoured"`
	Recycled   int64                    `json:"recycled"`
	Stuck      int64                    `json:"stuck"`
	Traversal  measure.TraversalSummary `json:"traversal"`
	Areas      []AreaSummary            `json:"areas"`
}

// Summary aggregates counters, traversal statistics and per-area fits
func (s *Simulation) Summary() Summary {
	w := s.world
	reg := w.Status
	sum := Summary{
		RunID:      s.id,
		Scenario:   s.scenario.Name,
		Strategy:   w.Costs.Strategy,
		Reason:     s.reason.String(),
		Ticks:      w.Tick(),
		SimTime:    w.Elapsed(),
		Population: w.Population.Len(),
		Arrivals:   len(w.Arrivals),
		Devoured:   reg.Ints.Get(status.KeyDevoured).Load(),
		Recycled:   reg.Ints.Get(status.KeyRecycled).Load(),
		Stuck:      reg.Ints.Get(status.KeyStuck).Load(),
		Traversal:  measure.SummarizeTraversals(w.Traversals()),
	}
	for _, a := range w.Areas {
		obs := a.Observations()
		as := AreaSummary{Name: a.Name, Observations: len(obs)}
		if fit, err := measure.FitDiagram(obs); err == nil {
			as.Fit = fit
		}
		sum.Areas = append(sum.Areas, as)
	}
	return sum
}

// Write prints the summary as aligned text
func (sum Summary) Write(out io.Writer) error {
	lines := []string{
		fmt.Sprintf("run       %s", sum.RunID),
		fmt.Sprintf("strategy  %s", sum.Strategy),
		fmt.Sprintf("stopped   %s after %d ticks (%s simulated)", sum.Reason, sum.Ticks, sum.SimTime),
		fmt.Sprintf("agents    %d remaining, %d arrived, %d devoured, %d recycled, %d stuck",
			sum.Population, sum.Arrivals, sum.Devoured, sum.Recycled, sum.Stuck),
	}
	if t := sum.Traversal; t.Count > 0 {
		lines = append(lines, fmt.Sprintf("traversal mean %s sd %s median %s max %s",
			t.Mean.Round(time.Millisecond), t.StdDev.Round(time.Millisecond),
			t.Median.Round(time.Millisecond), t.Max.Round(time.Millisecond)))
	}
	for _, a := range sum.Areas {
		if a.Fit == nil {
			lines = append(lines, fmt.Sprintf("area %-12s %d observations, no fit", a.Name, a.Observations))
			continue
		}
		lines = append(lines, fmt.Sprintf("area %-12s %d observations, v=%.3f%+.3fρ r²=%.3f jam=%.3f",
			a.Name, a.Observations, a.Fit.FreeSpeed, a.Fit.Slope, a.Fit.R2, a.Fit.JamDensity))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return err
		}
	}
	return nil
}
