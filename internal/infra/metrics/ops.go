package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	buildInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Always 1; labels carry the running version and commit.",
	}, []string{"version", "commit"})
	cacheRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Redis cache lookups by cache and result (hit, miss, bypass).",
	}, []string{"cache", "result"})
	dbPoolConns = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "pool_connections",
		Help:      "Postgres pool connections by state (total, idle, acquired, max).",
	}, []string{"state"})
)

func SetBuildInfo(version, commit string) { buildInfo.WithLabelValues(version, commit).Set(1) }

func IncCacheRequest(cache, result string) {
	cacheRequests.WithLabelValues(norm(cache), norm(result)).Inc()
}

// SetDBPoolStats is fed from pgxpool.Pool.Stat by the pool stats job.
func SetDBPoolStats(total, idle, acquired, max int32) {
	for state, v := range map[string]int32{"total": total, "idle": idle, "acquired": acquired, "max": max} {
		dbPoolConns.WithLabelValues(state).Set(float64(v))
	}
}
