package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/funnel/pkg/domain"
)

// storedLead keeps the fields the wire format omits.
type storedLead struct {
	domain.Lead
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type storedEvent struct {
	domain.AnalyticsEvent
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Store) leadsKey(funnelID string) string {
	return s.prefix + "leads:" + funnelID
}

func (s *Store) eventsKey(funnelUUID string) string {
	return s.prefix + "events:" + funnelUUID
}

// AppendLead pushes the lead onto the funnel's list.
func (s *Store) AppendLead(ctx context.Context, lead domain.Lead) error {
	data, err := json.Marshal(storedLead{Lead: lead, SessionID: lead.SessionID, Timestamp: lead.Timestamp})
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}
	if err := s.client.RPush(ctx, s.leadsKey(lead.FunnelID), data).Err(); err != nil {
		return fmt.Errorf("failed to append lead: %w", err)
	}
	return nil
}

// ListLeads returns the leads of one funnel, oldest first.
func (s *Store) ListLeads(ctx context.Context, funnelID string) ([]domain.Lead, error) {
	vals, err := s.client.LRange(ctx, s.leadsKey(funnelID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	leads := make([]domain.Lead, 0, len(vals))
	for _, v := range vals {
		var sl storedLead
		if err := json.Unmarshal([]byte(v), &sl); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lead: %w", err)
		}
		lead := sl.Lead
		lead.SessionID = sl.SessionID
		lead.Timestamp = sl.Timestamp
		leads = append(leads, lead)
	}
	return leads, nil
}

// AppendEvent pushes the event onto the funnel's list.
func (s *Store) AppendEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	data, err := json.Marshal(storedEvent{AnalyticsEvent: event, SessionID: event.SessionID, Timestamp: event.Timestamp})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := s.client.RPush(ctx, s.eventsKey(event.FunnelUUID), data).Err(); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// ListEvents returns the events of one funnel, oldest first.
func (s *Store) ListEvents(ctx context.Context, funnelUUID string) ([]domain.AnalyticsEvent, error) {
	vals, err := s.client.LRange(ctx, s.eventsKey(funnelUUID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]domain.AnalyticsEvent, 0, len(vals))
	for _, v := range vals {
		var se storedEvent
		if err := json.Unmarshal([]byte(v), &se); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		event := se.AnalyticsEvent
		event.SessionID = se.SessionID
		event.Timestamp = se.Timestamp
		events = append(events, event)
	}
	return events, nil
}
