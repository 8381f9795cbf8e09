package middleware

import (
	"context"
	"fmt"
	"maps"
	"regexp"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/ports"
)

// Mask replaces the value of every masked form field.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks the form values whose element id matches any of
// the patterns before they reach the store, once the session's lead has been
// submitted. Until then values are stored as entered so the lead carries
// them. Masked fields read back as Mask, so only mask fields nothing after
// the lead page branches on.
func NewPIIMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("mask pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if !state.LeadSubmitted {
		return m.next.Save(ctx, sessionID, state)
	}
	// The engine keeps using the caller's state, so mask a copy.
	masked := *state
	masked.FormValues = maps.Clone(state.FormValues)
	for k := range masked.FormValues {
		if m.matches(k) {
			masked.FormValues[k] = Mask
		}
	}
	return m.next.Save(ctx, sessionID, &masked)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
