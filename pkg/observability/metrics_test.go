package observability_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/funnel"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReporter struct{}

func (failingReporter) RecordEvent(context.Context, domain.AnalyticsEvent) error { return nil }
func (failingReporter) SubmitLead(context.Context, domain.Lead) error {
	return errors.New("unreachable")
}

func TestMetrics_RecordPlayback(t *testing.T) {
	m := observability.NewMetrics()
	eng := funnel.New(funnel.WithLifecycleHooks(m.Hooks()), funnel.WithReporter(failingReporter{}))
	ctx := context.Background()

	f := &domain.Funnel{ID: "9", UUID: "m", Pages: []domain.Page{
		{ID: "a", NextPageID: "c"},
		{ID: "b"},
		{ID: "c", Type: domain.PageContact},
		{ID: "d"},
	}}
	p := eng.NewPlayer(ctx, f)
	p.Advance(ctx)    // a -> c via next
	p.GoBack(ctx)     // c -> b
	p.Advance(ctx)    // b -> c linear
	p.SubmitLead(ctx) // c -> d linear
	eng.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageViews.WithLabelValues("m", "a")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PageViews.WithLabelValues("m", "c")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Leads.WithLabelValues("9")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("next")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("back")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("linear")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchFailures.WithLabelValues("lead")))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.Leads.WithLabelValues("x").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `funnel_leads_total{funnel="x"} 1`)
}

func TestChain_DeliversInOrder(t *testing.T) {
	var calls []string
	first := domain.LifecycleHooks{
		OnPageView: func(context.Context, *domain.AnalyticsEvent) { calls = append(calls, "first") },
	}
	second := domain.LifecycleHooks{
		OnPageView:   func(context.Context, *domain.AnalyticsEvent) { calls = append(calls, "second") },
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "transition") },
	}

	chained := observability.Chain(first, domain.LifecycleHooks{}, second)
	chained.OnPageView(context.Background(), &domain.AnalyticsEvent{})
	chained.OnTransition(context.Background(), &domain.TransitionEvent{})

	assert.Equal(t, []string{"first", "second", "transition"}, calls)
	assert.Nil(t, chained.OnLeadSubmit)
}
