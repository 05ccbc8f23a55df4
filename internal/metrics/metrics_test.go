package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSearchTier(t *testing.T) {
	before := testutil.ToFloat64(searchTier.WithLabelValues("vector_strict"))
	SearchTier("vector_strict")
	assert.InDelta(t, before+1, testutil.ToFloat64(searchTier.WithLabelValues("vector_strict")), 1e-9)
}

func TestWebhookEvent(t *testing.T) {
	WebhookEvent("checkout.session.completed", "applied")
	assert.GreaterOrEqual(t, testutil.ToFloat64(webhookEvents.WithLabelValues("checkout.session.completed", "applied")), 1.0)
}

func TestObserveHTTP(t *testing.T) {
	ObserveHTTP("GET", "/api/ideias", 200, 0.01)
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/ideias", "200")), 1.0)
}

func TestEmbeddingCache(t *testing.T) {
	EmbeddingCache(true)
	EmbeddingCache(false)
	assert.GreaterOrEqual(t, testutil.ToFloat64(embeddingCache.WithLabelValues("hit")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(embeddingCache.WithLabelValues("miss")), 1.0)
}
