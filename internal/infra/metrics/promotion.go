package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	promotionRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "promotion",
		Name:      "runs_total",
		Help:      "Promotion runs by status (queued, rejected, finished).",
	}, []string{"status"})
	promotionGroups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "promotion",
		Name:      "groups_total",
		Help:      "Groups processed by promotion runs, by outcome (sent, skipped, failed).",
	}, []string{"outcome"})
	promotionMessages = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "promotion",
		Name:      "messages_total",
		Help:      "Single promotion sends, by result.",
	}, []string{"result"})
	promotionRunSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "promotion",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a promotion run.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
)

func IncPromotionRun(status string)    { promotionRuns.WithLabelValues(norm(status)).Inc() }
func IncPromotionGroup(outcome string) { promotionGroups.WithLabelValues(norm(outcome)).Inc() }

func IncPromotionMessage(ok bool) {
	if ok {
		promotionMessages.WithLabelValues("ok").Inc()
		return
	}
	promotionMessages.WithLabelValues("error").Inc()
}

func ObservePromotionRun(seconds float64) { promotionRunSeconds.Observe(seconds) }
