package middleware

import (
	"strconv"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// APIErrors counts error responses by status code and route.
	APIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_api_errors_total",
		Help: "Total number of error responses served",
	}, []string{"status", "route"})

	// RecipeWrites counts successful recipe create/update/delete operations.
	RecipeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_recipe_writes_total",
		Help: "Total number of committed recipe writes",
	}, []string{"operation"})
)

var (
	promOnce sync.Once
	promHTTP *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the fiberprometheus collector for the service. It
// registers on the default registry, so only the first call creates it.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promHTTP = fiberprometheus.New(serviceName)
	})
	return promHTTP
}

// MetricsMiddleware records default HTTP metrics and counts error responses.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := prom.Middleware(c)

		if status := c.Response().StatusCode(); status >= fiber.StatusBadRequest {
			route := c.Path()
			if r := c.Route(); r != nil && r.Path != "" {
				route = r.Path
			}
			APIErrors.WithLabelValues(strconv.Itoa(status), route).Inc()
		}
		return err
	}
}
