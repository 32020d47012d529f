package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"ReplicaForecast/internal/algorithm"
	"ReplicaForecast/internal/domain/models"
	"ReplicaForecast/internal/usecase"
	xhttp "ReplicaForecast/pkg/http"
	xlogger "ReplicaForecast/pkg/logger"
)

const maxBodyBytes = 4 << 20

// ForecastEchoHandler serves forecasts over HTTP with the CLI request bodies.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	service *usecase.ForecastService
	backend string
}

func NewForecastEchoHandler(logger *xlogger.Logger, service *usecase.ForecastService, backend string) *ForecastEchoHandler {
	return &ForecastEchoHandler{logger: logger, service: service, backend: backend}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/forecast")
	g.GET("/records", h.Records)
	g.POST("/:algorithm", h.Forecast)

	e.GET("/healthz", h.Health)
}

// Forecast answers POST /api/v1/forecast/:algorithm.
func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_TOO_LARGE", "", "request body too large", http.StatusRequestEntityTooLarge))
		}
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("failed to read request body").WithError(err))
	}

	alg := c.Param("algorithm")
	res, err := h.service.Forecast(c.Request().Context(), alg, body)
	if err != nil {
		return h.forecastError(c, alg, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Records answers GET /api/v1/forecast/records.
func (h *ForecastEchoHandler) Records(c echo.Context) error {
	req := &models.RecordsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.service.Recent(c.Request().Context(), req.Algorithm, req.Limit)
	if err != nil {
		if errors.Is(err, usecase.ErrRecordsUnavailable) {
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailable(err.Error()))
		}
		h.logger.Error("records usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Health answers GET /healthz.
func (h *ForecastEchoHandler) Health(c echo.Context) error {
	if err := h.service.Health(c.Request().Context()); err != nil {
		h.logger.Warn("health check failed", xlogger.String("backend", h.backend), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailable("record backend unreachable").WithParam("backend", h.backend))
	}
	return xhttp.SuccessResponse(c, map[string]string{"backend": h.backend})
}

func (h *ForecastEchoHandler) forecastError(c echo.Context, alg string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownAlgorithm):
		return echo.NewHTTPError(http.StatusNotFound, "unknown algorithm "+alg)
	case algorithm.IsValidation(err):
		return xhttp.AppErrorResponse(c, xhttp.ValidationFailed(err.Error()))
	case algorithm.IsComputation(err):
		h.logger.Warn("forecast computation failed", xlogger.String("algorithm", alg), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ComputationFailed(err.Error()))
	default:
		h.logger.Error("forecast usecase error", xlogger.String("algorithm", alg), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("forecast failed").WithError(err))
	}
}
