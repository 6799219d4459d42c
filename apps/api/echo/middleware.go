package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/markbook/services/metrics"
)

// metricsMiddleware observes every request under its route pattern. Errors are handled here so the
// recorded status is the one sent to the client.
func metricsMiddleware(m *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(ctx.Request().Method, route, ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}
