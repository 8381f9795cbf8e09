package memory

import (
	"context"
	"sync"

	"github.com/aretw0/funnel/pkg/domain"
)

// ReportStore records leads and analytics events in arrival order.
// It implements ports.LeadStore, ports.EventStore and ports.Reporter, so it
// can back the reference service or receive reports from a local engine.
type ReportStore struct {
	mu     sync.RWMutex
	leads  []domain.Lead
	events []domain.AnalyticsEvent
}

// NewReportStore creates an empty store.
func NewReportStore() *ReportStore {
	return &ReportStore{}
}

// AppendLead records a lead. Its data map is copied.
func (s *ReportStore) AppendLead(ctx context.Context, lead domain.Lead) error {
	data := make(map[string]string, len(lead.Data))
	for k, v := range lead.Data {
		data[k] = v
	}
	lead.Data = data

	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

// ListLeads returns the leads of one funnel, oldest first.
func (s *ReportStore) ListLeads(ctx context.Context, funnelID string) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Lead
	for _, l := range s.leads {
		if l.FunnelID == funnelID {
			out = append(out, l)
		}
	}
	return out, nil
}

// AppendEvent records an analytics event.
func (s *ReportStore) AppendEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListEvents returns the events of one funnel, oldest first.
func (s *ReportStore) ListEvents(ctx context.Context, funnelUUID string) ([]domain.AnalyticsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AnalyticsEvent
	for _, e := range s.events {
		if e.FunnelUUID == funnelUUID {
			out = append(out, e)
		}
	}
	return out, nil
}

// RecordEvent implements ports.Reporter.
func (s *ReportStore) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	return s.AppendEvent(ctx, event)
}

// SubmitLead implements ports.Reporter.
func (s *ReportStore) SubmitLead(ctx context.Context, lead domain.Lead) error {
	return s.AppendLead(ctx, lead)
}
