// Package metrics exposes Prometheus counters for the moderation workflow.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "workflow_transitions_total",
		Help: "Moderation workflow transitions applied, by entity and action.",
	},
	[]string{"entity", "action"},
)

func init() {
	prometheus.MustRegister(transitions)
}

// Transition records one applied workflow transition.
func Transition(entity, action string) {
	transitions.WithLabelValues(entity, action).Inc()
}

// Handler serves the /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
