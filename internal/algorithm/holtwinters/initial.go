package holtwinters

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// initialLegacy is the legacy-heuristic start: the level is the mean of every m-th
// observation, the trend compares the second cycle to the first.
func (md *model) initialLegacy() (level, trend float64, seasonals []float64) {
	y, m := md.series, md.periods

	var sum float64
	var count int
	for i := 0; i < len(y); i += m {
		sum += y[i]
		count++
	}
	level = sum / float64(count)

	lead, lag := y[m:2*m], y[:m]
	if md.mulTrend {
		trend = math.Exp((math.Log(stat.Mean(lead, nil)) - math.Log(stat.Mean(lag, nil))) / float64(m))
	} else {
		var diff float64
		for i := range lead {
			diff += (lead[i] - lag[i]) / float64(m)
		}
		trend = diff / float64(m)
	}

	seasonals = make([]float64, m)
	for i := 0; i < m; i++ {
		if md.mulSeasonal {
			seasonals[i] = y[i] / level
		} else {
			seasonals[i] = y[i] - level
		}
	}
	return level, trend, seasonals
}

// initialHeuristic derives the components from a centred moving average over at least
// 10 + 2*(m/2) points: averaged detrended cycles give the seasonals, and a straight line
// through the first ten trend values gives the level and trend.
func (md *model) initialHeuristic() (level, trend float64, seasonals []float64, err error) {
	y, m := md.series, md.periods
	n := len(y)

	minObs := 10 + 2*(m/2)
	if n < minObs || n < 2*m {
		return 0, 0, nil, errors.New("not enough observations for heuristic initialization")
	}

	cycles := n / m
	if cycles > 5 {
		cycles = 5
	}
	if need := (minObs + m - 1) / m; cycles < need {
		cycles = need
	}
	window := m * cycles
	if window > n {
		window = n
	}
	head := y[:window]

	ma := centredAverage(head, m)

	seasonals = make([]float64, m)
	counts := make([]int, m)
	for i, v := range head {
		if math.IsNaN(ma[i]) {
			continue
		}
		if md.mulSeasonal {
			seasonals[i%m] += v / ma[i]
		} else {
			seasonals[i%m] += v - ma[i]
		}
		counts[i%m]++
	}
	for i := range seasonals {
		if counts[i] == 0 {
			return 0, 0, nil, errors.New("seasonal position has no detrended observations")
		}
		seasonals[i] /= float64(counts[i])
	}

	mean := stat.Mean(seasonals, nil)
	for i := range seasonals {
		if md.mulSeasonal {
			seasonals[i] /= mean
		} else {
			seasonals[i] -= mean
		}
	}

	smoothed := make([]float64, 0, len(ma))
	for _, v := range ma {
		if !math.IsNaN(v) {
			smoothed = append(smoothed, v)
		}
	}
	if len(smoothed) < 10 {
		return 0, 0, nil, errors.New("moving average left fewer than 10 observations")
	}

	xs := make([]float64, 10)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	intercept, slope := stat.LinearRegression(xs, smoothed[:10], nil, false)

	level = intercept
	if md.mulTrend {
		trend = 1 + slope/intercept
	} else {
		trend = slope
	}
	return level, trend, seasonals, nil
}

// initialKnown takes the caller supplied components, repeating the seasonal value over a cycle.
func (md *model) initialKnown(req *Request) (level, trend float64, seasonals []float64, err error) {
	if req.InitialLevel == nil {
		return 0, 0, nil, errors.New("initialization method is known but initialLevel not given")
	}
	if req.InitialTrend == nil {
		return 0, 0, nil, errors.New("initialization method is known but initialTrend not given")
	}
	if req.InitialSeasonal == nil {
		return 0, 0, nil, errors.New("initialization method is known but initialSeasonal not given")
	}

	seasonals = make([]float64, md.periods)
	for i := range seasonals {
		seasonals[i] = *req.InitialSeasonal
	}
	return *req.InitialLevel, *req.InitialTrend, seasonals, nil
}

// centredAverage is a centred moving average of width m (a 2×m average when m is even).
// Positions without a full window are NaN.
func centredAverage(y []float64, m int) []float64 {
	n := len(y)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	offset := (m - 1) / 2
	plain := make([]float64, n)
	for i := range plain {
		plain[i] = math.NaN()
		lo, hi := i+offset+1-m, i+offset
		if lo < 0 || hi >= n {
			continue
		}
		plain[i] = stat.Mean(y[lo:hi+1], nil)
	}

	if m%2 == 1 {
		copy(out, plain)
		return out
	}

	// Average adjacent windows so the even-width average is centred on an observation.
	for i := 1; i+1 < n; i++ {
		a, b := plain[i], plain[i+1]
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		out[i] = (a + b) / 2
	}
	return out
}
