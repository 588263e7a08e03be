// Package metrics exposes Prometheus counters for the auth flows and the
// /metrics scrape endpoint.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthOperations counts lifecycle operations by outcome. Operation labels
// follow the route names (register, login, refresh, verify_email,
// password_reset, password_reset_confirm, logout); result is "ok" or the
// failure class.
var AuthOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "arkana",
		Subsystem: "auth",
		Name:      "operations_total",
		Help:      "Authentication lifecycle operations by operation and result.",
	},
	[]string{"operation", "result"},
)

// Observe records one operation outcome.
func Observe(operation, result string) {
	AuthOperations.WithLabelValues(operation, result).Inc()
}

// Handler adapts the Prometheus scrape handler to an Echo route.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
