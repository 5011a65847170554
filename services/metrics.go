package services

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	menuMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "menu",
		Subsystem: "service",
		Name:      "mutations_total",
		Help:      "Structural menu mutations broken down by operation and result.",
	}, []string{"operation", "result"})

	hierarchyCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "menu",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Hierarchy cache lookups broken down by hit/miss.",
	}, []string{"result"})
)

func recordMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(KindOf(err)))
		if result == "" {
			result = "error"
		}
	}
	menuMutations.WithLabelValues(operation, result).Inc()
}

func recordCacheRequest(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	hierarchyCacheRequests.WithLabelValues(result).Inc()
}
