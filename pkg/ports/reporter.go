package ports

import (
	"context"

	"github.com/aretw0/funnel/pkg/domain"
)

// Reporter is the outbound analytics and lead boundary. The playback engine
// never waits on it and discards every error it returns.
type Reporter interface {
	RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error
	SubmitLead(ctx context.Context, lead domain.Lead) error
}

// NopReporter discards everything. It is the engine default.
type NopReporter struct{}

func (NopReporter) RecordEvent(context.Context, domain.AnalyticsEvent) error { return nil }
func (NopReporter) SubmitLead(context.Context, domain.Lead) error            { return nil }

// StoreReporter writes reports straight into storage. The reference service
// uses it for hosted sessions, where the engine runs next to the stores.
type StoreReporter struct {
	Leads  LeadStore
	Events EventStore
}

func (r StoreReporter) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	return r.Events.AppendEvent(ctx, event)
}

func (r StoreReporter) SubmitLead(ctx context.Context, lead domain.Lead) error {
	return r.Leads.AppendLead(ctx, lead)
}
