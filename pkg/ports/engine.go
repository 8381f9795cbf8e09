package ports

import (
	"context"

	"github.com/aretw0/funnel/pkg/domain"
)

// StatelessEngine is the playback core as seen by adapters (HTTP, MCP) that
// keep session state outside the engine. Every method returns a new state and
// leaves its input untouched; the bool reports whether the page changed.
type StatelessEngine interface {
	Start(ctx context.Context, funnel *domain.Funnel, sessionID string) *domain.State
	UpdateFormValue(state *domain.State, elementID, value string) *domain.State
	Advance(ctx context.Context, funnel *domain.Funnel, state *domain.State) (*domain.State, bool)
	GoBack(ctx context.Context, funnel *domain.Funnel, state *domain.State) (*domain.State, bool)
	SubmitLead(ctx context.Context, funnel *domain.Funnel, state *domain.State) (*domain.State, bool)
	Resolve(funnel *domain.Funnel, state *domain.State) domain.NextResult
}
