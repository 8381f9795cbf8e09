package runtime

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter captures every report. Calls arrive on dispatcher
// goroutines, so access is guarded.
type recordingReporter struct {
	mu      sync.Mutex
	events  []domain.AnalyticsEvent
	leads   []domain.Lead
	leadErr error
}

func (r *recordingReporter) RecordEvent(_ context.Context, e domain.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingReporter) SubmitLead(_ context.Context, l domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, l)
	return r.leadErr
}

func (r *recordingReporter) pageViews() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, e := range r.events {
		if e.EventType == domain.EventPageView {
			ids = append(ids, e.PageID)
		}
	}
	sort.Strings(ids)
	return ids
}

func linearFunnel() *domain.Funnel {
	return &domain.Funnel{ID: "7", UUID: "lin", Pages: pages("p0", "p1", "p2")}
}

func TestEngine_Start(t *testing.T) {
	rep := &recordingReporter{}
	var viewed []string
	eng := NewEngine(WithReporter(rep), WithLifecycleHooks(domain.LifecycleHooks{
		OnPageView: func(_ context.Context, e *domain.AnalyticsEvent) { viewed = append(viewed, e.PageID) },
	}))

	state := eng.Start(context.Background(), linearFunnel(), "s1")
	eng.Wait()

	assert.Equal(t, 0, state.CurrentPageIndex)
	assert.Empty(t, state.FormValues)
	assert.Equal(t, []string{"p0"}, viewed)
	require.Len(t, rep.events, 1)
	assert.Equal(t, "lin", rep.events[0].FunnelUUID)
	assert.Equal(t, domain.EventPageView, rep.events[0].EventType)
	assert.Equal(t, "p0", rep.events[0].PageID)
	assert.Equal(t, "s1", rep.events[0].SessionID)
}

func TestEngine_Start_EmptyFunnel(t *testing.T) {
	rep := &recordingReporter{}
	eng := NewEngine(WithReporter(rep))
	f := &domain.Funnel{UUID: "empty"}
	ctx := context.Background()

	state := eng.Start(ctx, f, "s1")
	next, moved := eng.Advance(ctx, f, state)
	assert.False(t, moved)
	_, moved = eng.SubmitLead(ctx, f, next)
	assert.False(t, moved)

	eng.Wait()
	assert.Empty(t, rep.events)
	assert.Empty(t, rep.leads)
}

func TestEngine_LinearScenario(t *testing.T) {
	eng := NewEngine()
	f := linearFunnel()
	ctx := context.Background()
	state := eng.Start(ctx, f, "s1")

	var indices []int
	for i := 0; i < 4; i++ {
		var moved bool
		state, moved = eng.Advance(ctx, f, state)
		indices = append(indices, state.CurrentPageIndex)
		if i < 2 {
			assert.True(t, moved)
		} else {
			assert.False(t, moved)
		}
	}
	assert.Equal(t, []int{1, 2, 2, 2}, indices)
}

func TestEngine_TerminalIdempotence(t *testing.T) {
	rep := &recordingReporter{}
	eng := NewEngine(WithReporter(rep))
	f := linearFunnel()
	ctx := context.Background()

	state := eng.Start(ctx, f, "s1")
	state, _ = eng.Advance(ctx, f, state)
	state, _ = eng.Advance(ctx, f, state)

	for i := 0; i < 5; i++ {
		next, moved := eng.Advance(ctx, f, state)
		assert.False(t, moved)
		assert.Equal(t, 2, next.CurrentPageIndex)
		state = next
	}

	eng.Wait()
	assert.Equal(t, []string{"p0", "p1", "p2"}, rep.pageViews(), "no page views at terminal")
}

func TestEngine_GoBackIsRuleIndependent(t *testing.T) {
	f := &domain.Funnel{UUID: "jump", Pages: pages("p0", "p1", "p2", "p3", "p4")}
	f.Pages[0].Conditions = []domain.NavigationCondition{
		{ElementID: "e1", Operator: domain.OpEquals, Value: "skip", TargetPageID: "p3"},
	}
	f.Pages[1].ConditionalRouting = domain.NewRoutingMap(domain.Route{Value: "r", TargetPageID: "p4"})

	tests := []struct {
		name      string
		values    map[string]string
		startPage int
		wantAfter int
	}{
		{"after condition jump", map[string]string{"e1": "skip"}, 0, 3},
		{"after routing jump", map[string]string{"x": "r"}, 1, 4},
		{"after linear advance", map[string]string{}, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &recordingReporter{}
			eng := NewEngine(WithReporter(rep))
			ctx := context.Background()

			state := domain.NewState("s", f.UUID)
			state.CurrentPageIndex = tt.startPage
			state.FormValues = tt.values

			state, moved := eng.Advance(ctx, f, state)
			require.True(t, moved)
			require.Equal(t, tt.wantAfter, state.CurrentPageIndex)

			back, moved := eng.GoBack(ctx, f, state)
			assert.True(t, moved)
			assert.Equal(t, tt.wantAfter-1, back.CurrentPageIndex)
		})
	}
}

func TestEngine_GoBackStopsAtZero(t *testing.T) {
	rep := &recordingReporter{}
	eng := NewEngine(WithReporter(rep))
	f := linearFunnel()
	ctx := context.Background()

	state := eng.Start(ctx, f, "s1")
	state, _ = eng.Advance(ctx, f, state)
	state, moved := eng.GoBack(ctx, f, state)
	assert.True(t, moved)
	assert.Equal(t, 0, state.CurrentPageIndex)

	state, moved = eng.GoBack(ctx, f, state)
	assert.False(t, moved)
	assert.Equal(t, 0, state.CurrentPageIndex)

	eng.Wait()
	assert.Equal(t, []string{"p0", "p0", "p1"}, rep.pageViews())
}

func TestEngine_UpdateFormValue(t *testing.T) {
	eng := NewEngine()
	original := domain.NewState("s", "f")

	s1 := eng.UpdateFormValue(original, "email", "a@b.c")
	s2 := eng.UpdateFormValue(s1, "email", "x@y.z")

	assert.Empty(t, original.FormValues, "input state must not be mutated")
	assert.Equal(t, "a@b.c", s1.FormValues["email"])
	assert.Equal(t, "x@y.z", s2.FormValues["email"])
}

func TestEngine_SubmitLeadFailureDoesNotBlock(t *testing.T) {
	f := &domain.Funnel{ID: "99", UUID: "lead", Pages: pages("contact", "p1", "thanks")}
	f.Pages[0].Type = domain.PageContact
	f.Pages[0].NextPageID = "thanks"
	ctx := context.Background()

	run := func(leadErr error) (*domain.State, *recordingReporter, []string) {
		rep := &recordingReporter{leadErr: leadErr}
		var failures []string
		eng := NewEngine(WithReporter(rep), WithLifecycleHooks(domain.LifecycleHooks{
			OnDispatchFail: func(_ context.Context, kind string, _ error) { failures = append(failures, kind) },
		}))
		state := eng.Start(ctx, f, "s1")
		state = eng.UpdateFormValue(state, "email", "a@b.c")
		next, moved := eng.SubmitLead(ctx, f, state)
		require.True(t, moved)
		eng.Wait()
		return next, rep, failures
	}

	ok, okRep, okFailures := run(nil)
	failed, failedRep, failures := run(errors.New("connection refused"))

	assert.Equal(t, ok.CurrentPageIndex, failed.CurrentPageIndex)
	assert.Equal(t, 2, failed.CurrentPageIndex)
	assert.Empty(t, okFailures)
	assert.Equal(t, []string{DispatchLead}, failures)

	for _, rep := range []*recordingReporter{okRep, failedRep} {
		require.Len(t, rep.leads, 1)
		assert.Equal(t, "99", rep.leads[0].FunnelID)
		assert.Equal(t, map[string]string{"email": "a@b.c"}, rep.leads[0].Data)

		var submits []string
		for _, e := range rep.events {
			if e.EventType == domain.EventLeadSubmit {
				submits = append(submits, e.PageID)
			}
		}
		assert.Equal(t, []string{"contact"}, submits)
	}
}

func TestEngine_LeadDataIsSnapshot(t *testing.T) {
	f := linearFunnel()
	var captured *domain.Lead
	eng := NewEngine(WithLifecycleHooks(domain.LifecycleHooks{
		OnLeadSubmit: func(_ context.Context, l *domain.Lead) { captured = l },
	}))
	ctx := context.Background()

	state := eng.UpdateFormValue(eng.Start(ctx, f, "s1"), "name", "Ada")
	_, _ = eng.SubmitLead(ctx, f, state)
	state.FormValues["name"] = "changed"

	require.NotNil(t, captured)
	assert.Equal(t, "Ada", captured.Data["name"])
}

func TestEngine_HooksFireInCommitOrder(t *testing.T) {
	f := linearFunnel()
	var order []string
	eng := NewEngine(WithLifecycleHooks(domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			order = append(order, "transition:"+e.ToPage)
		},
		OnPageView: func(_ context.Context, e *domain.AnalyticsEvent) {
			order = append(order, "view:"+e.PageID)
		},
	}))
	ctx := context.Background()

	state := eng.Start(ctx, f, "s1")
	state, _ = eng.Advance(ctx, f, state)
	state, _ = eng.GoBack(ctx, f, state)
	_, _ = eng.Advance(ctx, f, state)

	assert.Equal(t, []string{
		"view:p0",
		"transition:p1", "view:p1",
		"transition:p0", "view:p0",
		"transition:p1", "view:p1",
	}, order)
}

type panickingReporter struct{}

func (panickingReporter) RecordEvent(context.Context, domain.AnalyticsEvent) error { panic("boom") }
func (panickingReporter) SubmitLead(context.Context, domain.Lead) error            { panic("boom") }

func TestEngine_ReporterPanicIsContained(t *testing.T) {
	f := linearFunnel()
	eng := NewEngine(WithReporter(panickingReporter{}))
	ctx := context.Background()

	state := eng.Start(ctx, f, "s1")
	state, moved := eng.SubmitLead(ctx, f, state)
	eng.Wait()

	assert.True(t, moved)
	assert.Equal(t, 1, state.CurrentPageIndex)
}

func TestEngine_SubmitLeadMarksState(t *testing.T) {
	f := linearFunnel()
	eng := NewEngine()
	ctx := context.Background()

	state := eng.Start(ctx, f, "s1")
	assert.False(t, state.LeadSubmitted)

	state, moved := eng.SubmitLead(ctx, f, state)
	assert.True(t, moved)
	assert.True(t, state.LeadSubmitted)

	// On the last page the lead still goes out even though nothing moves.
	state.CurrentPageIndex = 2
	state.LeadSubmitted = false
	state, moved = eng.SubmitLead(ctx, f, state)
	eng.Wait()
	assert.False(t, moved)
	assert.True(t, state.LeadSubmitted)
}

func TestEngine_GoBackOutOfRangeStaysPut(t *testing.T) {
	f := linearFunnel()
	eng := NewEngine()
	ctx := context.Background()

	state := eng.Start(ctx, f, "s1")
	state.CurrentPageIndex = 7
	next, moved := eng.GoBack(ctx, f, state)
	assert.False(t, moved)
	assert.Equal(t, 7, next.CurrentPageIndex)

	state.CurrentPageIndex = 2
	next, moved = eng.GoBack(ctx, f, state)
	eng.Wait()
	assert.True(t, moved)
	assert.Equal(t, 1, next.CurrentPageIndex)
}
