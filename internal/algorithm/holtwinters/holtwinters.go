// Package holtwinters forecasts the next value of a seasonal series with triple exponential
// smoothing at fixed smoothing constants.
package holtwinters

import (
	"ReplicaForecast/internal/algorithm"
	"ReplicaForecast/pkg/logger"
)

// Name is used in diagnostics.
const Name = "Holt-Winters"

// Adapter implements algorithm.Algorithm for Holt-Winters requests.
type Adapter struct {
	logger *logger.Logger
}

func NewAdapter(l *logger.Logger) *Adapter {
	if l == nil {
		l = logger.Nop()
	}
	return &Adapter{logger: l}
}

func (a *Adapter) Name() string {
	return Name
}

// Predict decodes input and returns the forecast rounded up.
func (a *Adapter) Predict(input []byte) (int, error) {
	req, err := ParseRequest(input)
	if err != nil {
		return 0, err
	}
	return a.Forecast(req)
}

// Forecast fits an already validated request.
func (a *Adapter) Forecast(req *Request) (int, error) {
	fit, err := FitModel(req)
	if err != nil {
		return 0, &algorithm.ComputationError{Err: err}
	}

	a.logger.Debug("holt-winters fitted",
		logger.String("trend", req.Trend),
		logger.String("seasonal", req.Seasonal),
		logger.String("initialization_method", req.InitializationMethod),
		logger.Int("observations", len(req.Series)),
		logger.Float64("sse", fit.SSE),
		logger.Float64("damping", fit.Damping),
		logger.Float64("forecast", fit.Forecast),
	)

	return algorithm.CeilPrediction(fit.Forecast)
}
