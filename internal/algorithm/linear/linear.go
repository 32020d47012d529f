// Package linear forecasts the replica count at a future instant from a straight line fitted to
// the replica history.
package linear

import (
	"time"

	"ReplicaForecast/internal/algorithm"
	"ReplicaForecast/pkg/logger"
)

// Name is used in diagnostics.
const Name = "Linear Regression"

// Adapter implements algorithm.Algorithm for linear trend requests.
type Adapter struct {
	logger *logger.Logger
	now    func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock replaces the wall clock used when a request has no currentTime.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

func NewAdapter(l *logger.Logger, opts ...Option) *Adapter {
	if l == nil {
		l = logger.Nop()
	}
	a := &Adapter{logger: l, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string {
	return Name
}

// Predict decodes input and returns the forecast rounded up.
func (a *Adapter) Predict(input []byte) (int, error) {
	_, series, err := ParseRequest(input, a.now())
	if err != nil {
		return 0, err
	}
	return a.Forecast(series)
}

// Forecast fits a resolved series.
func (a *Adapter) Forecast(series *Series) (int, error) {
	fit := FitSeries(series)

	a.logger.Debug("linear regression fitted",
		logger.Int("observations", len(series.Points)),
		logger.Float64("slope", fit.Slope),
		logger.Float64("intercept", fit.Intercept),
		logger.Int64("look_ahead_ms", series.LookAhead.Milliseconds()),
	)

	return algorithm.CeilPrediction(fit.Intercept)
}
