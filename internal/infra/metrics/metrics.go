// Package metrics owns the bot's Prometheus registry. Every collector is
// created through factory so it lands in Registry, never in the global default.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promo_bot"

var (
	Registry = prometheus.NewRegistry()
	factory  = promauto.With(Registry)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves Registry in the Prometheus text format and counts its own scrapes.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
