package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
	"github.com/cjnghn/drone-topview-analysis/pkg/metrics"
)

// RequestLogger logs each request under the api category and records it in m (which may be nil).
// Metrics are labelled by route pattern so that ids do not explode cardinality.
func RequestLogger(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		took := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		m.RecordHTTPRequest(c.Method(), route, status, took)

		logger.Default().Log(logger.LogEntry{
			Level:    logger.LevelInfo,
			Category: logger.CategoryAPI,
			Action:   "request",
			Message:  c.Method() + " " + c.Path(),
			Duration: took.String(),
			Data: map[string]interface{}{
				"status": status,
				"route":  route,
				"ip":     c.IP(),
			},
		})

		return err
	}
}
