// AngelaMos | 2026
// metrics.go

package core

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ArtifactsIssued       *prometheus.CounterVec
	QuotaRejections       *prometheus.CounterVec
	QuotaConsumeFailures  prometheus.Counter
	IssuanceFailures      *prometheus.CounterVec
	ScansTotal            prometheus.Counter
	RenderDuration        prometheus.Histogram
	AccountsRegistered    prometheus.Counter
	RateLimitFallbackHits prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ArtifactsIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_issued_total",
				Help:      "Artifacts successfully issued, by plan tier",
			},
			[]string{"plan"},
		),
		QuotaRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quota_rejections_total",
				Help:      "Issuance requests rejected for exceeding the monthly quota",
			},
			[]string{"plan"},
		),
		QuotaConsumeFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quota_consume_failures_total",
				Help:      "Quota increments that failed after the artifact was persisted",
			},
		),
		IssuanceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "issuance_failures_total",
				Help:      "Issuance requests aborted, by failing step",
			},
			[]string{"step"},
		),
		ScansTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Scan-views of issued artifacts",
			},
		),
		RenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Time spent encoding and rasterizing artifacts",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		AccountsRegistered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accounts_registered_total",
				Help:      "Accounts created through registration",
			},
		),
		RateLimitFallbackHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_fallback_total",
				Help:      "Rate limit decisions served by the in-process fallback",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ArtifactsIssued,
		m.QuotaRejections,
		m.QuotaConsumeFailures,
		m.IssuanceFailures,
		m.ScansTotal,
		m.RenderDuration,
		m.AccountsRegistered,
		m.RateLimitFallbackHits,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
