package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/metrics"
)

// requestMetrics records request counts, latency and in-flight requests.
func requestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		httpMetrics := metrics.GetMetrics().HTTP
		httpMetrics.RequestsInFlight.Inc()
		defer httpMetrics.RequestsInFlight.Dec()

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not written the response yet
			status = statusOf(err)
		}
		method := c.Method()
		pattern := metrics.GetHandlerPattern(c.Path())
		httpMetrics.RequestsTotal.WithLabelValues(method, pattern, metrics.GetStatusClass(status)).Inc()
		httpMetrics.RequestDuration.WithLabelValues(method, pattern).Observe(time.Since(start).Seconds())
		if status >= fiber.StatusBadRequest && status < fiber.StatusInternalServerError {
			httpMetrics.ErrorsTotal.WithLabelValues(pattern, "client_"+strconv.Itoa(status)).Inc()
		}
		return err
	}
}

func statusOf(err error) int {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
