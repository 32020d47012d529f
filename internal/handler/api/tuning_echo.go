package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ReplicaForecast/internal/domain/models"
	"ReplicaForecast/pkg/config"
)

// TuningEchoHandler serves fixed Holt-Winters smoothing constants in the shape the runtime tuner
// reads, so one instance can tune another.
type TuningEchoHandler struct {
	params models.TuningParams
}

func NewTuningEchoHandler(cfg *config.Config) *TuningEchoHandler {
	alpha, beta, gamma := cfg.HoltWinters.Alpha, cfg.HoltWinters.Beta, cfg.HoltWinters.Gamma
	return &TuningEchoHandler{params: models.TuningParams{Alpha: &alpha, Beta: &beta, Gamma: &gamma}}
}

func (h *TuningEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/tuning/holt_winters", h.HoltWinters)
	e.POST("/tuning/holt_winters", h.HoltWinters)
}

// HoltWinters ignores any request body.
func (h *TuningEchoHandler) HoltWinters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.params)
}
