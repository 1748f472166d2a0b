package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	metricsOnce sync.Once
	httpMetrics *fiberprometheus.FiberPrometheus
)

// InitMetrics builds the HTTP metrics collector for the given service name.
// Collectors live in the default registry, so only the first call's name is
// used. Call RegisterAt on the result to expose /metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	metricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}

// MetricsMiddleware records request counts and latency for every route.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
