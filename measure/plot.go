package measure

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SavePlot writes a speed/density scatter with the fitted line as an image
// Format follows the file extension (png, svg, pdf)
func SavePlot(path string, obs []Observation, fit *Fit) error {
	if len(obs) == 0 {
		return fmt.Errorf("%w: nothing to plot", ErrInsufficientData)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	p := plot.New()
	p.Title.Text = "Fundamental diagram"
	p.X.Label.Text = "Density (pedestrians/cell)"
	p.Y.Label.Text = "Speed (cells/s)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(obs))
	maxDensity := 0.0
	for i, o := range obs {
		pts[i] = plotter.XY{X: o.Density, Y: o.Speed}
		if o.Density > maxDensity {
			maxDensity = o.Density
		}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to create scatter: %w", err)
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 0, G: 160, B: 200, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add("observations", scatter)

	if fit != nil {
		line := plotter.NewFunction(fit.Speed)
		line.XMin = 0
		line.XMax = maxDensity
		if fit.JamDensity > maxDensity {
			line.XMax = fit.JamDensity
		}
		line.Color = color.RGBA{R: 200, A: 255}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("fit v=%.2f%+.2fρ", fit.FreeSpeed, fit.Slope), line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
