package ingest

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_uploads_total",
		Help: "Accepted station uploads.",
	}, []string{"station"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rejected_total",
		Help: "Rejected upload requests by reason.",
	}, []string{"reason"})

	duplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_duplicates_total",
		Help: "Uploads dropped as GPRS/QoS1 redeliveries.",
	})
)

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler { return promhttp.Handler() }
