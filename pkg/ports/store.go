package ports

import (
	"context"

	"github.com/aretw0/funnel/pkg/domain"
)

// FunnelStore persists funnel definitions for the reference service.
type FunnelStore interface {
	// SaveFunnel stores the definition, replacing any previous revision with the same UUID.
	SaveFunnel(ctx context.Context, funnel *domain.Funnel) error

	// GetFunnel returns domain.ErrFunnelNotFound if the UUID is unknown.
	GetFunnel(ctx context.Context, uuid string) (*domain.Funnel, error)

	// ListFunnels returns every stored UUID.
	ListFunnels(ctx context.Context) ([]string, error)
}

// LeadStore persists submitted leads.
type LeadStore interface {
	AppendLead(ctx context.Context, lead domain.Lead) error
	ListLeads(ctx context.Context, funnelID string) ([]domain.Lead, error)
}

// EventStore persists analytics events.
type EventStore interface {
	AppendEvent(ctx context.Context, event domain.AnalyticsEvent) error
	ListEvents(ctx context.Context, funnelUUID string) ([]domain.AnalyticsEvent, error)
}

// StateStore persists hosted playback sessions.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns every active session ID.
	List(ctx context.Context) ([]string, error)
}
