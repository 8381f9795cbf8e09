package ports

import (
	"context"

	"github.com/aretw0/funnel/pkg/domain"
)

// FunnelSource retrieves funnel definitions by UUID.
// Implementations return a *domain.FetchError classifying the failure.
type FunnelSource interface {
	Fetch(ctx context.Context, uuid string) (*domain.Funnel, error)
}

// FunnelLister is implemented by sources that can enumerate their funnels
// (e.g. the template catalog).
type FunnelLister interface {
	List(ctx context.Context) ([]string, error)
}
