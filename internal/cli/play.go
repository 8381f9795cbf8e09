package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/funnel"
	"github.com/aretw0/funnel/internal/presentation/tui"
	"github.com/aretw0/funnel/pkg/adapters/file"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/observability"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/aretw0/funnel/pkg/session"
)

// PlayOptions configures a terminal playback.
type PlayOptions struct {
	UUID     string
	Headless bool
	Debug    bool

	// SessionID persists progress under SessionsDir so a later run resumes
	// it. Empty plays a throwaway session.
	SessionID   string
	SessionsDir string
	Fresh       bool

	Input  io.Reader
	Output io.Writer
}

// Play fetches a funnel and runs it in the terminal until it ends, the
// visitor quits or input runs out.
func Play(ctx context.Context, source ports.FunnelSource, reporter ports.Reporter, logger *slog.Logger, opts PlayOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	engineOpts := []funnel.Option{funnel.WithSource(source), funnel.WithLogger(logger)}
	if reporter != nil {
		engineOpts = append(engineOpts, funnel.WithReporter(reporter))
	}
	if opts.Debug {
		engineOpts = append(engineOpts, funnel.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}
	engine := funnel.New(engineOpts...)
	defer engine.Wait()

	f, err := engine.Load(ctx, opts.UUID)
	if err != nil {
		return errors.New(domain.VisitorMessage(err))
	}

	var sessions *session.Manager
	if opts.SessionID != "" {
		sessions = session.NewManager(file.New(opts.SessionsDir), session.WithLogger(logger))
		if opts.Fresh {
			if err := sessions.Delete(ctx, opts.SessionID); err != nil {
				return fmt.Errorf("reset session: %w", err)
			}
		}
	}

	player, resumed, err := startPlayer(ctx, engine, f, sessions, opts.SessionID)
	if err != nil {
		return err
	}

	interactive := !opts.Headless && isTerminal(opts.Output)
	runner := &funnel.Runner{Input: opts.Input, Output: opts.Output, Headless: opts.Headless}
	if !opts.Headless {
		tui.PrintBanner(opts.Output, funnel.Version, f.Theme)
		tui.PrintTitle(opts.Output, f)
		if resumed {
			printSystemMessage(opts.Output, "Resuming session '%s' at page '%s'.", opts.SessionID, player.CurrentPage().ID)
		}
		if render, err := tui.NewRenderer(tui.StyleFor(f.Theme, interactive), 80); err == nil {
			runner.Renderer = render
		} else {
			logger.Warn("markdown renderer unavailable", "err", err)
		}
	}

	runErr := runner.Run(ctx, player)

	if sessions != nil {
		// Save even when interrupted; ctx may already be cancelled.
		if err := sessions.Save(context.WithoutCancel(ctx), opts.SessionID, player.State()); err != nil {
			logger.Error("failed to save session", "session_id", opts.SessionID, "err", err)
		}
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func startPlayer(ctx context.Context, engine *funnel.Engine, f *domain.Funnel, sessions *session.Manager, sessionID string) (*funnel.Player, bool, error) {
	if sessions == nil {
		return engine.NewPlayer(ctx, f), false, nil
	}

	state, err := sessions.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		state = domain.NewState(sessionID, f.UUID)
		state.CurrentPageIndex = -1
	case err != nil:
		return nil, false, fmt.Errorf("load session: %w", err)
	case state.FunnelUUID != f.UUID:
		return nil, false, fmt.Errorf("session %q belongs to funnel %q", sessionID, state.FunnelUUID)
	default:
		return engine.ResumePlayer(ctx, f, state), true, nil
	}
	// An out-of-range state restarts from the first page under this id.
	return engine.ResumePlayer(ctx, f, state), false, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsInteractive(f)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
