// Package metrics holds the Prometheus registry and the collectors the
// service records into.
//
//	e.Use(metrics.Middleware())
//	e.GET("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bistro"

var (
	// RequestDuration tracks request latency by method, route and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// GuardDenials counts requests stopped by the access guard.
	GuardDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "denials_total",
			Help:      "Requests rejected by the access guard.",
		},
		[]string{"reason"}, // "unauthenticated" | "not_admin" | "not_owner"
	)

	// PaymentsFinalized counts finalize attempts by outcome.
	PaymentsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "finalized_total",
			Help:      "Payment finalize attempts by outcome.",
		},
		[]string{"outcome"}, // "settled" | "replayed" | "failed" | "in_progress"
	)

	// CartLinesRetired counts cart lines deleted by settlement.
	CartLinesRetired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "cart_lines_retired_total",
		Help:      "Cart lines removed as part of payment finalization.",
	})

	// SettlementLogDropped counts audit rows that could not be persisted.
	SettlementLogDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "settlement_log_dropped_total",
		Help:      "Settlement audit rows that failed to persist.",
	})
)

// Registry is the registry exposed on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		RequestTotal,
		GuardDenials,
		PaymentsFinalized,
		CartLinesRetired,
		SettlementLogDropped,
	)
}

// Middleware records duration and count for every request, labelled with
// the route template rather than the raw path to keep cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			labels := []string{c.Request().Method, route, strconv.Itoa(status)}
			RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(labels...).Inc()
			return err
		}
	}
}

// Handler exposes the registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
