package linear

import (
	"gonum.org/v1/gonum/stat"

	"ReplicaForecast/pkg/util"
)

// Fit is the least squares line through the history, with x measured in seconds back from the
// search time.
type Fit struct {
	Intercept float64
	Slope     float64
}

// FitSeries fits the line. The prediction for the search time is the intercept.
func FitSeries(s *Series) Fit {
	search := s.Search()
	xs := make([]float64, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = util.SecondsBetween(p.At, search)
		ys[i] = p.Replicas
	}

	if degenerate(xs) {
		return Fit{Intercept: stat.Mean(ys, nil)}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return Fit{Intercept: intercept, Slope: slope}
}

// degenerate reports whether every x is the same, leaving the slope undetermined.
func degenerate(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
