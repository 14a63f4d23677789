package measure

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData indicates too few distinct observations to fit a diagram
var ErrInsufficientData = errors.New("measure: not enough observations")

// Fit is a Greenshields fundamental diagram: speed = FreeSpeed * (1 - density/JamDensity)
type Fit struct {
	FreeSpeed  float64 `json:"free_speed"`
	Slope      float64 `json:"slope"`
	JamDensity float64 `json:"jam_density"` // 0 when slope is not negative
	Capacity   float64 `json:"capacity"`    // Peak flow FreeSpeed*JamDensity/4
	MeanSpeed  float64 `json:"mean_speed"`
	StdSpeed   float64 `json:"std_speed"`
	R2         float64 `json:"r2"`
	Samples    int     `json:"samples"`
}

// Speed evaluates the fitted line at density
func (f *Fit) Speed(density float64) float64 {
	return f.FreeSpeed + f.Slope*density
}

// FitDiagram regresses speed on density over the observations
func FitDiagram(obs []Observation) (*Fit, error) {
	if len(obs) < 2 {
		return nil, fmt.Errorf("%w: %d samples", ErrInsufficientData, len(obs))
	}

	density := make([]float64, len(obs))
	speed := make([]float64, len(obs))
	for i, o := range obs {
		density[i] = o.Density
		speed[i] = o.Speed
	}

	if stat.Variance(density, nil) == 0 {
		return nil, fmt.Errorf("%w: density never varies", ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(density, speed, nil, false)
	mean, std := stat.MeanStdDev(speed, nil)

	f := &Fit{
		FreeSpeed: alpha,
		Slope:     beta,
		MeanSpeed: mean,
		StdSpeed:  std,
		R2:        stat.RSquared(density, speed, nil, alpha, beta),
		Samples:   len(obs),
	}
	if beta < 0 {
		f.JamDensity = -alpha / beta
		f.Capacity = alpha * f.JamDensity / 4
	}
	return f, nil
}

// TraversalSummary aggregates arrival traversal times
type TraversalSummary struct {
	Count  int           `json:"count"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"std_dev"`
	Median time.Duration `json:"median"`
	Max    time.Duration `json:"max"`
}

// SummarizeTraversals computes count, mean, deviation, median and max
func SummarizeTraversals(ds []time.Duration) TraversalSummary {
	if len(ds) == 0 {
		return TraversalSummary{}
	}

	secs := make([]float64, len(ds))
	for i, d := range ds {
		secs[i] = d.Seconds()
	}
	sort.Float64s(secs)

	mean, std := stat.MeanStdDev(secs, nil)
	if len(secs) == 1 {
		std = 0
	}
	median := stat.Quantile(0.5, stat.Empirical, secs, nil)

	toDur := func(s float64) time.Duration {
		return time.Duration(s * float64(time.Second))
	}

	return TraversalSummary{
		Count:  len(secs),
		Mean:   toDur(mean),
		StdDev: toDur(std),
		Median: toDur(median),
		Max:    toDur(secs[len(secs)-1]),
	}
}
