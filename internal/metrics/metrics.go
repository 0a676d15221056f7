package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "repurpose"

// Metrics groups the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generationRequests *prometheus.CounterVec
	generationErrors   *prometheus.CounterVec
	topicLength        prometheus.Histogram
	fallbacks          prometheus.Counter
	cacheLookups       *prometheus.CounterVec
	webhookDeliveries  *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Generation requests by request type and resolved content type.",
		}, []string{"type", "content_type"}),
		generationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Failed generation requests by error kind.",
		}, []string{"kind"}),
		topicLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_topic_length",
			Help:      "Topic length in characters.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_type_fallbacks_total",
			Help:      "Generate requests whose content type fell back to video.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_cache_lookups_total",
			Help:      "Generation cache lookups by outcome.",
		}, []string{"outcome"}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook deliveries by platform and status.",
		}, []string{"platform", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.generationRequests,
		m.generationErrors,
		m.topicLength,
		m.fallbacks,
		m.cacheLookups,
		m.webhookDeliveries,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ObserveGeneration(requestType, contentType string, topicLen int) {
	if m == nil {
		return
	}
	m.generationRequests.WithLabelValues(requestType, contentType).Inc()
	m.topicLength.Observe(float64(topicLen))
}

func (m *Metrics) GenerationError(kind string) {
	if m == nil {
		return
	}
	m.generationErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ContentTypeFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WebhookDelivery(platform, status string) {
	if m == nil {
		return
	}
	m.webhookDeliveries.WithLabelValues(platform, status).Inc()
}
