package holtwinters

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Bounds for the estimated damping factor.
const (
	minDamping     = 0.8
	maxDamping     = 0.995
	initialDamping = 0.99
)

const (
	// perfectFit is the SSE below which starting values are not refined further.
	perfectFit     = 1e-20
	maxEvaluations = 20000
)

// Fit is a fitted model together with the state it was fitted with.
type Fit struct {
	Level     float64
	Trend     float64
	Seasonals []float64
	Damping   float64
	SSE       float64
	Forecast  float64
}

// FitModel fits the model described by req with its fixed smoothing constants and returns the
// one-step-ahead forecast. Only initial components (and the damping factor of a damped trend)
// are ever estimated.
func FitModel(req *Request) (*Fit, error) {
	md := newModel(req)

	if md.multiplicative() {
		for _, v := range md.series {
			if v <= 0 {
				return nil, errors.New("series must be strictly positive when using multiplicative trend or seasonal components")
			}
		}
	}

	if req.InitializationMethod != InitKnown &&
		(req.InitialLevel != nil || req.InitialTrend != nil || req.InitialSeasonal != nil) {
		return nil, fmt.Errorf("initialization method is %s but initial values have been set", req.InitializationMethod)
	}

	st := state{
		alpha: *req.Alpha,
		beta:  *req.Beta,
		gamma: *req.Gamma,
		phi:   1,
	}

	var err error
	switch req.InitializationMethod {
	case InitLegacyHeuristic:
		st.level, st.trend, st.seasonals = md.initialLegacy()
	case InitHeuristic, InitEstimated:
		st.level, st.trend, st.seasonals, err = md.initialHeuristic()
	case InitKnown:
		st.level, st.trend, st.seasonals, err = md.initialKnown(req)
	default:
		err = fmt.Errorf("unknown initialization method %q", req.InitializationMethod)
	}
	if err != nil {
		return nil, err
	}

	estimateInitial := req.InitializationMethod == InitEstimated
	if req.DampedTrend {
		st.phi = initialDamping
	}

	if estimateInitial || req.DampedTrend {
		st, err = md.estimate(st, estimateInitial, req.DampedTrend)
		if err != nil {
			return nil, err
		}
	}

	sse, forecast := md.smooth(st)
	if math.IsNaN(forecast) || math.IsInf(forecast, 0) {
		return nil, fmt.Errorf("model diverged: forecast is %v", forecast)
	}

	return &Fit{
		Level:     st.level,
		Trend:     st.trend,
		Seasonals: st.seasonals,
		Damping:   st.phi,
		SSE:       sse,
		Forecast:  forecast,
	}, nil
}

// estimate minimises the in-sample SSE over the free parameters with Nelder-Mead.
// The free vector is [level, trend, seasonals...] when initial components are estimated,
// followed by the damping factor when the trend is damped.
func (md *model) estimate(start state, initial, damped bool) (state, error) {
	startSSE, _ := md.smooth(start)
	if math.IsNaN(startSSE) || math.IsInf(startSSE, 0) {
		return start, errors.New("starting values produce a non-finite fit")
	}
	if !damped && startSSE <= perfectFit {
		return start, nil
	}

	pack := func(st state) []float64 {
		var x []float64
		if initial {
			x = append(x, st.level, st.trend)
			x = append(x, st.seasonals...)
		}
		if damped {
			x = append(x, st.phi)
		}
		return x
	}
	unpack := func(x []float64) state {
		st := start
		if initial {
			st.level, st.trend = x[0], x[1]
			st.seasonals = x[2 : 2+md.periods]
		}
		if damped {
			st.phi = x[len(x)-1]
		}
		return st
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			st := unpack(x)
			if !md.feasible(st) {
				return math.Inf(1)
			}
			sse, _ := md.smooth(st)
			if math.IsNaN(sse) {
				return math.Inf(1)
			}
			return sse
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, pack(start), settings, &optimize.NelderMead{})
	if result == nil {
		return start, fmt.Errorf("optimize: %w", err)
	}
	if math.IsInf(result.F, 0) || math.IsNaN(result.F) || result.F > startSSE {
		return start, nil
	}

	best := unpack(result.X)
	best.seasonals = append([]float64(nil), best.seasonals...)
	return best, nil
}

// feasible applies the parameter bounds of the estimation.
func (md *model) feasible(st state) bool {
	if st.phi != 1 && (st.phi < minDamping || st.phi > maxDamping) {
		return false
	}
	if md.multiplicative() && st.level < 0 {
		return false
	}
	if md.mulTrend && st.trend < 0 {
		return false
	}
	if md.mulSeasonal {
		for _, s := range st.seasonals {
			if s < 0 {
				return false
			}
		}
	}
	return true
}
