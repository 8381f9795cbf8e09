package funnel

import (
	"context"
	"sync"

	"github.com/aretw0/funnel/internal/runtime"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/render"
)

// Player is one visitor session. It is the single writer of its state: every
// method runs to completion under a mutex, so concurrent calls are serialized
// in arrival order.
type Player struct {
	mu     sync.Mutex
	engine *runtime.Engine
	funnel *domain.Funnel
	state  *domain.State
}

// Funnel returns the definition being played. Callers must not modify it.
func (p *Player) Funnel() *domain.Funnel {
	return p.funnel
}

// State returns a copy of the current session state.
func (p *Player) State() *domain.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Snapshot()
}

// CurrentPage returns the page being shown, or nil for an empty funnel.
func (p *Player) CurrentPage() *domain.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.funnel.PageAt(p.state.CurrentPageIndex)
}

// UpdateFormValue records a visitor entry. No validation, no events.
func (p *Player) UpdateFormValue(elementID, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = p.engine.UpdateFormValue(p.state, elementID, value)
}

// Advance moves to the resolved next page. It reports false at the end of
// the funnel, where nothing changes.
func (p *Player) Advance(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, moved := p.engine.Advance(ctx, p.funnel, p.state)
	p.state = next
	return moved
}

// GoBack moves to the previous page in list order, regardless of how the
// current page was reached.
func (p *Player) GoBack(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, moved := p.engine.GoBack(ctx, p.funnel, p.state)
	p.state = next
	return moved
}

// SubmitLead reports the collected values as a lead, then advances.
func (p *Player) SubmitLead(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, moved := p.engine.SubmitLead(ctx, p.funnel, p.state)
	p.state = next
	return moved
}

// Next returns what Advance would do, without doing it.
func (p *Player) Next() domain.NextResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Resolve(p.funnel, p.state)
}

// View renders the current page.
func (p *Player) View() (*render.View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return render.Build(p.funnel, p.state)
}
