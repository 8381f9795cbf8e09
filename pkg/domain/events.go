package domain

import (
	"context"
	"time"
)

// EventType is the kind of analytics event reported to the collector.
type EventType string

const (
	EventPageView   EventType = "page_view"
	EventLeadSubmit EventType = "lead_submit"
)

// AnalyticsEvent is the body of POST /api/public/analytics.
type AnalyticsEvent struct {
	FunnelUUID string    `json:"funnelUuid"`
	EventType  EventType `json:"eventType"`
	PageID     string    `json:"pageId"`

	// SessionID and Timestamp are stamped locally; the wire contract ignores them.
	SessionID string    `json:"-"`
	Timestamp time.Time `json:"-"`
}

// Lead is the body of POST /api/public/leads.
type Lead struct {
	FunnelID string            `json:"funnelId"`
	Data     map[string]string `json:"data"`

	SessionID string    `json:"-"`
	Timestamp time.Time `json:"-"`
}

// TransitionEvent describes a committed page change.
type TransitionEvent struct {
	SessionID string
	FunnelID  string
	FromIndex int
	ToIndex   int
	FromPage  string
	ToPage    string
	Tier      Tier
	Back      bool
}

// LifecycleHooks defines callbacks for playback observability. Hooks run
// synchronously after a transition is committed, in commit order.
type LifecycleHooks struct {
	OnTransition   func(context.Context, *TransitionEvent)
	OnPageView     func(context.Context, *AnalyticsEvent)
	OnLeadSubmit   func(context.Context, *Lead)
	OnDispatchFail func(context.Context, string, error)
}
