package holtwinters

import (
	"encoding/json"

	"ReplicaForecast/internal/algorithm"
)

// Component kinds for trend and seasonality.
const (
	Additive       = "add"
	Multiplicative = "mul"
)

// Initialization methods.
const (
	InitEstimated       = "estimated"
	InitHeuristic       = "heuristic"
	InitLegacyHeuristic = "legacy-heuristic"
	InitKnown           = "known"
)

// Request is a validated Holt-Winters forecast request.
type Request struct {
	Trend                string    `json:"trend" validate:"required,oneof=add mul"`
	Seasonal             string    `json:"seasonal" validate:"required,oneof=add mul"`
	SeasonalPeriods      *int      `json:"seasonalPeriods" validate:"required,min=1"`
	Alpha                *float64  `json:"alpha" validate:"required"`
	Beta                 *float64  `json:"beta" validate:"required"`
	Gamma                *float64  `json:"gamma" validate:"required"`
	Series               []float64 `json:"series" validate:"required"`
	DampedTrend          bool      `json:"dampedTrend"`
	InitializationMethod string    `json:"initializationMethod" default:"estimated" validate:"oneof=estimated heuristic legacy-heuristic known"`
	InitialLevel         *float64  `json:"initialLevel,omitempty"`
	InitialTrend         *float64  `json:"initialTrend,omitempty"`
	InitialSeasonal      *float64  `json:"initialSeasonal,omitempty"`
}

// UnmarshalJSON accepts the snake_case spelling of initializationMethod as well.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	aux := struct {
		*plain
		InitializationMethodSnake *string `json:"initialization_method"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.InitializationMethod == "" && aux.InitializationMethodSnake != nil {
		r.InitializationMethod = *aux.InitializationMethodSnake
	}
	return nil
}

// Periods returns the seasonal period length.
func (r *Request) Periods() int {
	if r.SeasonalPeriods == nil {
		return 0
	}
	return *r.SeasonalPeriods
}

// ParseRequest decodes and validates a raw Holt-Winters request.
func ParseRequest(input []byte) (*Request, error) {
	req := &Request{}
	if err := algorithm.Decode(Name, input, req); err != nil {
		return nil, err
	}

	m := req.Periods()
	// Two full cycles are needed for the seasonal estimates; ten seasonally adjusted points for
	// the level and trend after the centred moving average drops m/2 points at each end.
	if len(req.Series) < 2*m {
		return nil, &algorithm.InsufficientDataError{Minimum: "2 * seasonal_periods observations"}
	}
	if len(req.Series) < 10+2*(m/2) {
		return nil, &algorithm.InsufficientDataError{Minimum: "10 + 2 * (seasonal_periods // 2) observations"}
	}

	return req, nil
}
