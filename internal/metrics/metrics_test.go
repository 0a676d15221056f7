package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveGeneration("generate", "video", 10)
	m.GenerationError("parse")
	m.ContentTypeFallback()
	m.CacheLookup(true)
	m.WebhookDelivery("tiktok", "posted")
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveGeneration("generate", "blog", 14)
	m.ObserveGeneration("generate", "blog", 20)
	m.ContentTypeFallback()
	m.WebhookDelivery("tiktok", "failed")

	if got := counterValue(t, m.generationRequests.WithLabelValues("generate", "blog")); got != 2 {
		t.Errorf("expected 2 generation requests, got %v", got)
	}
	if got := counterValue(t, m.fallbacks); got != 1 {
		t.Errorf("expected 1 fallback, got %v", got)
	}
	if got := counterValue(t, m.webhookDeliveries.WithLabelValues("tiktok", "failed")); got != 1 {
		t.Errorf("expected 1 failed delivery, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ContentTypeFallback()

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "repurpose_content_type_fallbacks_total 1") {
		t.Errorf("metrics output missing fallback counter:\n%s", body)
	}
}
