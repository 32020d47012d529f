package models

import "time"

// Algorithm identifiers used in routes, cache keys and records.
const (
	AlgorithmHoltWinters      = "holt-winters"
	AlgorithmLinearRegression = "linear-regression"
)

// ForecastRecord is the audit entry written for every computed forecast.
type ForecastRecord struct {
	ID           string    `json:"id"`
	Algorithm    string    `json:"algorithm"`
	Prediction   int       `json:"prediction"`
	Observations int       `json:"observations"`
	RequestHash  string    `json:"request_hash"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// ForecastResult is returned to HTTP callers.
type ForecastResult struct {
	Algorithm  string `json:"algorithm"`
	Prediction int    `json:"prediction"`
	Cached     bool   `json:"cached"`
}

// TuningParams are smoothing constants supplied by a tuning service. Nil values leave the
// request's own constants in place.
type TuningParams struct {
	Alpha *float64 `json:"alpha"`
	Beta  *float64 `json:"beta"`
	Gamma *float64 `json:"gamma"`
}

// TuningRequest is the context sent to a tuning service.
type TuningRequest struct {
	Trend           string    `json:"trend"`
	Seasonal        string    `json:"seasonal"`
	SeasonalPeriods int       `json:"seasonalPeriods"`
	Series          []float64 `json:"series"`
}
