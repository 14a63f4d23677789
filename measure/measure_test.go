package measure_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/pedsim/measure"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestArea_Geometry(t *testing.T) {
	a := measure.NewArea("corridor", 2, 1, 11, 4)
	assert.Equal(t, 9, a.Length())
	assert.Equal(t, 10*4, a.Extent())

	reversed := measure.NewArea("back", 11, 4, 2, 1)
	assert.Equal(t, 9, reversed.Length())
	assert.Equal(t, 11, reversed.EntryX)
	assert.Equal(t, 40, reversed.Extent())
}

func TestArea_TraversalSpeed(t *testing.T) {
	a := measure.NewArea("corridor", 2, 1, 11, 1)

	_, done := a.Observe(7, 2, 1, t0)
	require.False(t, done)
	assert.True(t, a.Inside(7))
	assert.Equal(t, 1, a.Occupants())
	assert.InDelta(t, 0.1, a.Density(), 1e-12)

	// Walking through the middle records nothing
	_, done = a.Observe(7, 6, 1, t0.Add(2*time.Second))
	require.False(t, done)

	obs, done := a.Observe(7, 11, 1, t0.Add(5*time.Second))
	require.True(t, done)
	assert.InDelta(t, 2.0, obs.Speed, 1e-12)
	assert.InDelta(t, 0.1, obs.Density, 1e-12)
	assert.Equal(t, "corridor", obs.Area)
	assert.False(t, a.Inside(7))
	assert.Zero(t, a.Density())

	assert.Len(t, a.Observations(), 1)
}

func TestArea_IgnoresRowsOutside(t *testing.T) {
	a := measure.NewArea("lane", 2, 3, 6, 5)
	_, done := a.Observe(1, 2, 7, t0)
	assert.False(t, done)
	assert.Zero(t, a.Occupants())
}

func TestArea_ExitWithoutEntry(t *testing.T) {
	a := measure.NewArea("lane", 2, 1, 6, 1)
	_, done := a.Observe(1, 6, 1, t0)
	assert.False(t, done)
	assert.Empty(t, a.Observations())
}

func TestArea_ZeroElapsedGuard(t *testing.T) {
	a := measure.NewArea("point", 4, 1, 4, 1)
	_, done := a.Observe(3, 4, 1, t0)
	assert.False(t, done, "same-instant entry and exit is not an observation")
	assert.Zero(t, a.Occupants())
	assert.Empty(t, a.Observations())
}

func TestArea_Forget(t *testing.T) {
	a := measure.NewArea("lane", 2, 1, 6, 2)
	a.Observe(1, 2, 1, t0)
	a.Observe(2, 2, 2, t0)
	require.Equal(t, 2, a.Occupants())

	a.Forget(1)
	a.Forget(99)
	assert.Equal(t, 1, a.Occupants())
	assert.InDelta(t, 1.0/10, a.Density(), 1e-12)
}

func TestFitDiagram(t *testing.T) {
	// Exact Greenshields line v = 2 - 4ρ
	var obs []measure.Observation
	for _, rho := range []float64{0.05, 0.1, 0.2, 0.3} {
		obs = append(obs, measure.Observation{Density: rho, Speed: 2 - 4*rho})
	}

	fit, err := measure.FitDiagram(obs)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit.FreeSpeed, 1e-9)
	assert.InDelta(t, -4.0, fit.Slope, 1e-9)
	assert.InDelta(t, 0.5, fit.JamDensity, 1e-9)
	assert.InDelta(t, 0.25, fit.Capacity, 1e-9)
	assert.InDelta(t, 1.0, fit.R2, 1e-9)
	assert.Equal(t, 4, fit.Samples)
}

func TestFitDiagram_Insufficient(t *testing.T) {
	_, err := measure.FitDiagram(nil)
	assert.ErrorIs(t, err, measure.ErrInsufficientData)

	_, err = measure.FitDiagram([]measure.Observation{{Density: 0.1, Speed: 1}, {Density: 0.1, Speed: 2}})
	assert.ErrorIs(t, err, measure.ErrInsufficientData)
}

func TestSummarizeTraversals(t *testing.T) {
	got := measure.SummarizeTraversals([]time.Duration{3 * time.Second, time.Second, 2 * time.Second})
	want := measure.TraversalSummary{
		Count:  3,
		Mean:   2 * time.Second,
		StdDev: time.Second,
		Median: 2 * time.Second,
		Max:    3 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SummarizeTraversals mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, measure.TraversalSummary{}, measure.SummarizeTraversals(nil))
	single := measure.SummarizeTraversals([]time.Duration{time.Second})
	assert.Zero(t, single.StdDev)
}

func TestSavePlot(t *testing.T) {
	obs := []measure.Observation{
		{Density: 0.1, Speed: 1.6},
		{Density: 0.2, Speed: 1.2},
		{Density: 0.3, Speed: 0.8},
	}
	fit, err := measure.FitDiagram(obs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plots", "diagram.png")
	require.NoError(t, measure.SavePlot(path, obs, fit))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.ErrorIs(t, measure.SavePlot(path, nil, nil), measure.ErrInsufficientData)
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	err := measure.RenderChart(&buf, map[string][]measure.Observation{
		"corridor": {{Density: 0.1, Speed: 1.5}},
		"exit":     {{Density: 0.2, Speed: 1.1}},
	})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "Fundamental diagram")
	assert.Contains(t, html, "corridor")
}
