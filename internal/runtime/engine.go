package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/ports"
)

// Dispatch kinds reported to OnDispatchFail.
const (
	DispatchEvent = "analytics"
	DispatchLead  = "lead"
)

// Engine is the playback core. It holds no session state: every operation
// takes a *domain.State and returns a new one, leaving the input untouched.
// The funnel definition is treated as read-only.
type Engine struct {
	reporter ports.Reporter
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	dispatch *dispatcher
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithReporter sets the analytics/lead boundary.
func WithReporter(r ports.Reporter) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		reporter: ports.NopReporter{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dispatch = &dispatcher{logger: e.logger, onFail: e.hooks.OnDispatchFail}
	return e
}

var _ ports.StatelessEngine = (*Engine)(nil)

// Start creates the initial state and reports a page view for the first page.
// A funnel without pages yields a state on which every action is a no-op.
func (e *Engine) Start(ctx context.Context, funnel *domain.Funnel, sessionID string) *domain.State {
	state := domain.NewState(sessionID, funnel.ReportingID())
	if first := funnel.PageAt(0); first != nil {
		e.logger.Debug("session started", "session_id", sessionID, "funnel", funnel.ReportingID(), "page_id", first.ID)
		e.emitPageView(ctx, funnel, state, first)
	} else {
		e.logger.Warn("funnel has no pages", "funnel", funnel.ReportingID())
	}
	return state
}

// UpdateFormValue records value for elementID, overwriting any previous entry.
// No validation and no side effects.
func (e *Engine) UpdateFormValue(state *domain.State, elementID, value string) *domain.State {
	next := state.Snapshot()
	if next.FormValues == nil {
		next.FormValues = make(map[string]string)
	}
	next.FormValues[elementID] = value
	return next
}

// Resolve exposes the navigation decision for the current state without
// committing it.
func (e *Engine) Resolve(funnel *domain.Funnel, state *domain.State) domain.NextResult {
	return ResolveNext(funnel, state.CurrentPageIndex, state.FormValues)
}

// Advance moves to the resolved next page and reports a page view for it.
// On terminal resolution the state is returned unchanged and nothing is reported,
// so repeated calls at the end of a funnel are safe.
func (e *Engine) Advance(ctx context.Context, funnel *domain.Funnel, state *domain.State) (*domain.State, bool) {
	result := e.Resolve(funnel, state)
	if result.Terminal {
		e.logger.Debug("end of funnel", "session_id", state.SessionID, "index", state.CurrentPageIndex)
		return state.Snapshot(), false
	}
	return e.transitionTo(ctx, funnel, state, result.Index, result.Tier, false), true
}

// GoBack moves to the linearly previous page regardless of how the current
// page was reached. It is a no-op on the first page. An index past the end
// of the funnel does not move either, since there is no previous page to
// land on; for any in-range index above 0 the move is unconditional.
func (e *Engine) GoBack(ctx context.Context, funnel *domain.Funnel, state *domain.State) (*domain.State, bool) {
	if state.CurrentPageIndex <= 0 || funnel.PageAt(state.CurrentPageIndex-1) == nil {
		return state.Snapshot(), false
	}
	return e.transitionTo(ctx, funnel, state, state.CurrentPageIndex-1, "", true), true
}

// SubmitLead sends a snapshot of the form values to the lead boundary,
// reports a lead_submit for the current page, then advances. Submission
// failures never prevent the transition.
func (e *Engine) SubmitLead(ctx context.Context, funnel *domain.Funnel, state *domain.State) (*domain.State, bool) {
	page := funnel.PageAt(state.CurrentPageIndex)
	if page == nil {
		return state.Snapshot(), false
	}

	now := e.now()
	lead := domain.Lead{
		FunnelID:  funnel.LeadID(),
		Data:      state.Values(),
		SessionID: state.SessionID,
		Timestamp: now,
	}
	if e.hooks.OnLeadSubmit != nil {
		e.hooks.OnLeadSubmit(ctx, &lead)
	}
	e.dispatch.Go(ctx, DispatchLead, func(ctx context.Context) error {
		return e.reporter.SubmitLead(ctx, lead)
	})

	event := domain.AnalyticsEvent{
		FunnelUUID: funnel.ReportingID(),
		EventType:  domain.EventLeadSubmit,
		PageID:     page.ID,
		SessionID:  state.SessionID,
		Timestamp:  now,
	}
	e.dispatch.Go(ctx, DispatchEvent, func(ctx context.Context) error {
		return e.reporter.RecordEvent(ctx, event)
	})

	e.logger.Info("lead submitted", "session_id", state.SessionID, "funnel", funnel.LeadID(), "page_id", page.ID, "fields", len(lead.Data))
	next, moved := e.Advance(ctx, funnel, state)
	next.LeadSubmitted = true
	return next, moved
}

// Wait blocks until every dispatched report has completed. Intended for
// graceful shutdown and tests; playback never calls it.
func (e *Engine) Wait() {
	e.dispatch.Wait()
}

// transitionTo commits the new index, then fires hooks and reports the page view.
func (e *Engine) transitionTo(ctx context.Context, funnel *domain.Funnel, state *domain.State, target int, tier domain.Tier, back bool) *domain.State {
	next := state.Snapshot()
	next.CurrentPageIndex = target
	next.History = append(next.History, target)

	from := funnel.PageAt(state.CurrentPageIndex)
	to := funnel.PageAt(target)

	if e.hooks.OnTransition != nil {
		evt := &domain.TransitionEvent{
			SessionID: state.SessionID,
			FunnelID:  funnel.ReportingID(),
			FromIndex: state.CurrentPageIndex,
			ToIndex:   target,
			ToPage:    to.ID,
			Tier:      tier,
			Back:      back,
		}
		if from != nil {
			evt.FromPage = from.ID
		}
		e.hooks.OnTransition(ctx, evt)
	}

	e.logger.Debug("transition", "session_id", state.SessionID, "from", state.CurrentPageIndex, "to", target, "page_id", to.ID, "tier", tier, "back", back)
	e.emitPageView(ctx, funnel, next, to)
	return next
}

func (e *Engine) emitPageView(ctx context.Context, funnel *domain.Funnel, state *domain.State, page *domain.Page) {
	event := domain.AnalyticsEvent{
		FunnelUUID: funnel.ReportingID(),
		EventType:  domain.EventPageView,
		PageID:     page.ID,
		SessionID:  state.SessionID,
		Timestamp:  e.now(),
	}
	if e.hooks.OnPageView != nil {
		e.hooks.OnPageView(ctx, &event)
	}
	e.dispatch.Go(ctx, DispatchEvent, func(ctx context.Context) error {
		return e.reporter.RecordEvent(ctx, event)
	})
}
