// Package tuning fetches Holt-Winters smoothing constants from an external tuning service.
package tuning

import (
	"context"
	"fmt"

	"ReplicaForecast/internal/domain/models"
	drepo "ReplicaForecast/internal/domain/repository"
	"ReplicaForecast/pkg/config"
	xhttp "ReplicaForecast/pkg/http"
)

// HTTPTuner posts the series context to the tuning endpoint and reads back alpha, beta and gamma.
type HTTPTuner struct {
	base     *HTTPServiceBase
	attempts int
}

// NewHTTPTuner builds a tuner for cfg.HoltWinters.TuningURL. It returns nil when no URL is set.
func NewHTTPTuner(cfg *config.Config, opts ...xhttp.ClientOption) *HTTPTuner {
	if cfg.HoltWinters.TuningURL == "" {
		return nil
	}
	return &HTTPTuner{
		base:     NewHTTPServiceBase(cfg.HoltWinters.TuningURL, cfg.HoltWinters.TuningTimeout, opts...),
		attempts: 2,
	}
}

func (t *HTTPTuner) Tune(ctx context.Context, req *models.TuningRequest) (*models.TuningParams, error) {
	var params models.TuningParams
	if err := t.base.PostJSONWithRetry(ctx, "", req, &params, t.attempts); err != nil {
		return nil, fmt.Errorf("tune: %w", err)
	}

	for name, v := range map[string]*float64{"alpha": params.Alpha, "beta": params.Beta, "gamma": params.Gamma} {
		if v != nil && (*v < 0 || *v > 1) {
			return nil, fmt.Errorf("tune: %s %v outside [0, 1]", name, *v)
		}
	}
	return &params, nil
}

var _ drepo.Tuner = (*HTTPTuner)(nil)
