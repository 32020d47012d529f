package holtwinters

import (
	"math"
)

// state holds the parameters one pass of the smoothing recursions runs with.
type state struct {
	alpha, beta, gamma float64
	phi                float64
	level              float64
	trend              float64
	seasonals          []float64
}

// model is a triple exponential smoothing model over a fixed series.
type model struct {
	series      []float64
	periods     int
	mulTrend    bool
	mulSeasonal bool
}

func newModel(req *Request) *model {
	return &model{
		series:      req.Series,
		periods:     req.Periods(),
		mulTrend:    req.Trend == Multiplicative,
		mulSeasonal: req.Seasonal == Multiplicative,
	}
}

// smooth runs the recursions over the whole series and returns the in-sample sum of squared
// one-step errors and the forecast for the step after the last observation.
//
// lvl[i], b[i] and s[i] are the components in effect before observation i is seen.
func (md *model) smooth(st state) (sse, forecast float64) {
	n, m := len(md.series), md.periods

	lvl := make([]float64, n+1)
	b := make([]float64, n+1)
	s := make([]float64, n+m)

	lvl[0] = st.level
	b[0] = st.trend
	copy(s, st.seasonals)

	for i := 1; i <= n; i++ {
		y := md.series[i-1]
		prev := md.trended(lvl[i-1], md.damp(b[i-1], st.phi))

		e := y - md.seasoned(prev, s[i-1])
		sse += e * e

		if md.mulSeasonal {
			lvl[i] = st.alpha*y/s[i-1] + (1-st.alpha)*prev
			s[i+m-1] = st.gamma*y/prev + (1-st.gamma)*s[i-1]
		} else {
			lvl[i] = st.alpha*(y-s[i-1]) + (1-st.alpha)*prev
			s[i+m-1] = st.gamma*(y-prev) + (1-st.gamma)*s[i-1]
		}
		b[i] = st.beta*md.growth(lvl[i], lvl[i-1]) + (1-st.beta)*md.damp(b[i-1], st.phi)
	}

	// With a single period the last seasonal slot repeats the previous one.
	s[n+m-1] = s[n-1]

	forecast = md.seasoned(md.trended(lvl[n], md.damp(b[n], st.phi)), s[n])
	return sse, forecast
}

func (md *model) trended(level, trend float64) float64 {
	if md.mulTrend {
		return level * trend
	}
	return level + trend
}

func (md *model) growth(level, prevLevel float64) float64 {
	if md.mulTrend {
		return level / prevLevel
	}
	return level - prevLevel
}

func (md *model) damp(trend, phi float64) float64 {
	if md.mulTrend {
		return math.Pow(trend, phi)
	}
	return trend * phi
}

func (md *model) seasoned(base, season float64) float64 {
	if md.mulSeasonal {
		return base * season
	}
	return base + season
}

// multiplicative reports whether any component is multiplicative.
func (md *model) multiplicative() bool {
	return md.mulTrend || md.mulSeasonal
}
