// Package metrics exposes vault counters on the default Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results.
const (
	ResultDone            = "done"
	ResultAuthRequired    = "auth_required"
	ResultConfirmRequired = "confirm_required"
	ResultError           = "error"
)

var (
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkvault_operations_total",
		Help: "Vault operations by name and result",
	}, []string{"op", "result"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkvault_auth_attempts_total",
		Help: "Password submissions by outcome",
	}, []string{"outcome"})

	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkvault_persist_failures_total",
		Help: "Durable writes that failed after an in-memory mutation",
	})

	documentLinks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkvault_document_links",
		Help: "Number of links in the current document",
	})

	documentSections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkvault_document_sections",
		Help: "Number of sections in the current document",
	})
)

// Operation counts one vault operation.
func Operation(op, result string) {
	operations.WithLabelValues(op, result).Inc()
}

// AuthAttempt counts one password submission.
func AuthAttempt(ok bool) {
	outcome := "rejected"
	if ok {
		outcome = "accepted"
	}
	authAttempts.WithLabelValues(outcome).Inc()
}

// PersistFailure counts one failed durable write.
func PersistFailure() {
	persistFailures.Inc()
}

// DocumentSize records the current document shape.
func DocumentSize(sections, links int) {
	documentSections.Set(float64(sections))
	documentLinks.Set(float64(links))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
