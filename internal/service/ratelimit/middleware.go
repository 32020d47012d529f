package ratelimit

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	drepo "ReplicaForecast/internal/domain/repository"
	xhttp "ReplicaForecast/pkg/http"
)

// Middleware rejects requests from clients whose bucket is empty with 429.
func Middleware(l *Limiter, metrics drepo.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if l.Allow(key) {
				return next(c)
			}

			if metrics != nil {
				metrics.RecordError("rate_limited")
			}
			wait := l.RetryAfter(key).Seconds()
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait))))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequests("rate limit exceeded"))
		}
	}
}
