package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the playback collectors.
type Metrics struct {
	PageViews        *prometheus.CounterVec
	Leads            *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	DispatchFailures *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		PageViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_page_views_total",
				Help: "Total number of page views",
			},
			[]string{"funnel", "page_id"},
		),
		Leads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_leads_total",
				Help: "Total number of submitted leads",
			},
			[]string{"funnel"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_transitions_total",
				Help: "Committed page transitions by resolving rule",
			},
			[]string{"tier"},
		),
		DispatchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_dispatch_failures_total",
				Help: "Analytics and lead reports that failed to deliver",
			},
			[]string{"kind"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.PageViews, m.Leads, m.Transitions, m.DispatchFailures)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPageView: func(_ context.Context, e *domain.AnalyticsEvent) {
			m.PageViews.WithLabelValues(e.FunnelUUID, e.PageID).Inc()
		},
		OnLeadSubmit: func(_ context.Context, l *domain.Lead) {
			m.Leads.WithLabelValues(l.FunnelID).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			tier := string(e.Tier)
			if e.Back {
				tier = "back"
			}
			m.Transitions.WithLabelValues(tier).Inc()
		},
		OnDispatchFail: func(_ context.Context, kind string, _ error) {
			m.DispatchFailures.WithLabelValues(kind).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
