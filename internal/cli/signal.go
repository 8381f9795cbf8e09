package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals end a command gracefully.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// WithShutdownSignals returns a context cancelled on the first SIGINT or
// SIGTERM. The signal is logged so a shutdown can be told apart from a
// failure. The returned stop function releases the signal handler.
func WithShutdownSignals(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
