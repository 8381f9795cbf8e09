package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/funnel/pkg/domain"
)

// FunnelStore keeps funnel definitions as serialized JSON, so stored
// definitions are isolated from later changes to the caller's values.
// It implements ports.FunnelStore, ports.FunnelSource and ports.FunnelLister.
type FunnelStore struct {
	mu      sync.RWMutex
	funnels map[string][]byte
}

// NewFunnelStore creates an empty store.
func NewFunnelStore() *FunnelStore {
	return &FunnelStore{funnels: make(map[string][]byte)}
}

// NewFromFunnels creates a store pre-loaded with definitions.
// This handles serialization automatically, improving DX for tests.
func NewFromFunnels(funnels ...*domain.Funnel) (*FunnelStore, error) {
	s := NewFunnelStore()
	for _, f := range funnels {
		if err := s.SaveFunnel(context.Background(), f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SaveFunnel stores the definition under its UUID.
func (s *FunnelStore) SaveFunnel(ctx context.Context, f *domain.Funnel) error {
	if f.UUID == "" {
		return errors.New("funnel missing uuid")
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal funnel %s: %w", f.UUID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.funnels[f.UUID] = data
	return nil
}

// GetFunnel returns domain.ErrFunnelNotFound for unknown UUIDs.
func (s *FunnelStore) GetFunnel(ctx context.Context, uuid string) (*domain.Funnel, error) {
	s.mu.RLock()
	data, ok := s.funnels[uuid]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrFunnelNotFound
	}

	var f domain.Funnel
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode funnel %s: %w", uuid, err)
	}
	return &f, nil
}

// ListFunnels returns every stored UUID in lexical order.
func (s *FunnelStore) ListFunnels(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.funnels))
	for id := range s.funnels {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}

// Fetch implements ports.FunnelSource.
func (s *FunnelStore) Fetch(ctx context.Context, uuid string) (*domain.Funnel, error) {
	f, err := s.GetFunnel(ctx, uuid)
	if errors.Is(err, domain.ErrFunnelNotFound) {
		return nil, &domain.FetchError{Kind: domain.FetchNotFound, UUID: uuid}
	}
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchFailed, UUID: uuid, Err: err}
	}
	return f, nil
}

// List implements ports.FunnelLister.
func (s *FunnelStore) List(ctx context.Context) ([]string, error) {
	return s.ListFunnels(ctx)
}
