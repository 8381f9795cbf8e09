package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/funnel/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

func (s *Store) funnelsKey() string {
	return s.prefix + "funnels"
}

// SaveFunnel stores the definition as JSON in a hash keyed by UUID.
func (s *Store) SaveFunnel(ctx context.Context, f *domain.Funnel) error {
	if f.UUID == "" {
		return errors.New("funnel missing uuid")
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal funnel %s: %w", f.UUID, err)
	}
	if err := s.client.HSet(ctx, s.funnelsKey(), f.UUID, data).Err(); err != nil {
		return fmt.Errorf("failed to save funnel %s: %w", f.UUID, err)
	}
	return nil
}

// GetFunnel returns domain.ErrFunnelNotFound for unknown UUIDs.
func (s *Store) GetFunnel(ctx context.Context, uuid string) (*domain.Funnel, error) {
	val, err := s.client.HGet(ctx, s.funnelsKey(), uuid).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrFunnelNotFound
		}
		return nil, fmt.Errorf("failed to get funnel %s: %w", uuid, err)
	}

	var f domain.Funnel
	if err := json.Unmarshal(val, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal funnel %s: %w", uuid, err)
	}
	return &f, nil
}

// ListFunnels returns every stored UUID in lexical order.
func (s *Store) ListFunnels(ctx context.Context) ([]string, error) {
	ids, err := s.client.HKeys(ctx, s.funnelsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list funnels: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
