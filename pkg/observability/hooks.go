package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/funnel/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, and failed
// dispatches at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPageView: func(_ context.Context, e *domain.AnalyticsEvent) {
			logger.Debug("page_view", "funnel", e.FunnelUUID, "page_id", e.PageID, "session_id", e.SessionID)
		},
		OnLeadSubmit: func(_ context.Context, l *domain.Lead) {
			logger.Debug("lead_submit", "funnel", l.FunnelID, "session_id", l.SessionID, "fields", len(l.Data))
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			logger.Debug("transition",
				"session_id", e.SessionID,
				"from", e.FromPage,
				"to", e.ToPage,
				"tier", e.Tier,
				"back", e.Back,
			)
		},
		OnDispatchFail: func(_ context.Context, kind string, err error) {
			logger.Warn("report dispatch failed", "kind", kind, "err", err)
		},
	}
}

// Chain merges hook sets. Each event is delivered to every set, in argument order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		h := h
		if h.OnPageView != nil {
			prev := out.OnPageView
			out.OnPageView = func(ctx context.Context, e *domain.AnalyticsEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnPageView(ctx, e)
			}
		}
		if h.OnLeadSubmit != nil {
			prev := out.OnLeadSubmit
			out.OnLeadSubmit = func(ctx context.Context, l *domain.Lead) {
				if prev != nil {
					prev(ctx, l)
				}
				h.OnLeadSubmit(ctx, l)
			}
		}
		if h.OnTransition != nil {
			prev := out.OnTransition
			out.OnTransition = func(ctx context.Context, e *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTransition(ctx, e)
			}
		}
		if h.OnDispatchFail != nil {
			prev := out.OnDispatchFail
			out.OnDispatchFail = func(ctx context.Context, kind string, err error) {
				if prev != nil {
					prev(ctx, kind, err)
				}
				h.OnDispatchFail(ctx, kind, err)
			}
		}
	}
	return out
}
