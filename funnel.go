package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/funnel/internal/logging"
	"github.com/aretw0/funnel/internal/runtime"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/google/uuid"
)

// ErrNoSource is returned by Load and Play when no FunnelSource is configured.
var ErrNoSource = errors.New("no funnel source configured")

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and hands out single-session Players.
type Engine struct {
	runtime  *runtime.Engine
	source   ports.FunnelSource
	reporter ports.Reporter
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	newID    func() string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource sets where Load and Play fetch definitions from.
func WithSource(s ports.FunnelSource) Option {
	return func(e *Engine) {
		e.source = s
	}
}

// WithReporter sets the analytics and lead boundary.
func WithReporter(r ports.Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSessionIDs overrides session id generation (random UUIDs by default).
func WithSessionIDs(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized so we don't hand nil to the runtime.
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithReporter(eng.reporter),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng
}

// Load fetches a definition from the configured source.
func (e *Engine) Load(ctx context.Context, funnelUUID string) (*domain.Funnel, error) {
	if e.source == nil {
		return nil, ErrNoSource
	}
	f, err := e.source.Fetch(ctx, funnelUUID)
	if err != nil {
		e.logger.Warn("funnel fetch failed", "funnel", funnelUUID, "err", err)
		return nil, fmt.Errorf("load funnel %s: %w", funnelUUID, err)
	}
	return f, nil
}

// Play loads a definition and starts a new session on it.
func (e *Engine) Play(ctx context.Context, funnelUUID string) (*Player, error) {
	f, err := e.Load(ctx, funnelUUID)
	if err != nil {
		return nil, err
	}
	return e.NewPlayer(ctx, f), nil
}

// NewPlayer starts a new session on an already loaded definition.
func (e *Engine) NewPlayer(ctx context.Context, f *domain.Funnel) *Player {
	sessionID := e.newID()
	return &Player{
		engine: e.runtime,
		funnel: f,
		state:  e.runtime.Start(ctx, f, sessionID),
	}
}

// ResumePlayer continues a session from a previously saved state. Nothing is
// reported: the page view was emitted when the state was first committed.
// A state pointing outside the funnel is restarted from the first page.
func (e *Engine) ResumePlayer(ctx context.Context, f *domain.Funnel, state *domain.State) *Player {
	if state == nil || f.PageAt(state.CurrentPageIndex) == nil {
		sessionID := e.newID()
		if state != nil && state.SessionID != "" {
			sessionID = state.SessionID
		}
		return &Player{engine: e.runtime, funnel: f, state: e.runtime.Start(ctx, f, sessionID)}
	}
	return &Player{engine: e.runtime, funnel: f, state: state.Snapshot()}
}

// Runtime exposes the stateless engine for adapters that keep session state
// themselves (hosted sessions, MCP).
func (e *Engine) Runtime() ports.StatelessEngine {
	return e.runtime
}

// Wait blocks until in-flight analytics and lead reports have completed.
func (e *Engine) Wait() {
	e.runtime.Wait()
}
