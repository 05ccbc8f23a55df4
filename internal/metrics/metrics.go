// Package metrics объявляет метрики Prometheus сервиса.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacola",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sacola",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	searchTier = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacola",
		Name:      "search_tier_total",
		Help:      "Idea searches by the tier that produced the result.",
	}, []string{"tier"})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacola",
		Name:      "stripe_webhook_events_total",
		Help:      "Stripe webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	embeddingCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacola",
		Name:      "embedding_cache_total",
		Help:      "Query embedding cache lookups.",
	}, []string{"result"})
)

// ObserveHTTP учитывает завершенный запрос.
func ObserveHTTP(method, route string, status int, seconds float64) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// SearchTier учитывает уровень, на котором поиск нашел результат.
func SearchTier(tier string) {
	searchTier.WithLabelValues(tier).Inc()
}

// WebhookEvent учитывает обработанное событие Stripe.
func WebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// EmbeddingCache учитывает попадание или промах кэша эмбеддингов.
func EmbeddingCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	embeddingCache.WithLabelValues(result).Inc()
}
