package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Webhook admission outcomes
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_total",
			Help: "Webhook deliveries by admission outcome",
		},
		[]string{"outcome"}, // admitted|already_processed|invalid_signature|invalid_timestamp|invalid_payload|malformed_payload|storage_error|internal_error
	)

	// Post-admission enrichment
	EnrichmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_total",
			Help: "AI enrichment attempts by result",
		},
		[]string{"result"}, // ok|error|skipped
	)

	// Event publishing
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published to the broker by result",
		},
		[]string{"result"}, // ok|error
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(WebhooksTotal)
	prometheus.MustRegister(EnrichmentTotal)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(WorkerQueueDepth)
}
