package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// dispatcher runs reporting calls detached from the transition that scheduled
// them. Delivery is at-most-once: results are logged and discarded, never
// retried and never returned to the caller.
type dispatcher struct {
	wg     sync.WaitGroup
	logger *slog.Logger
	onFail func(context.Context, string, error)
}

// Go schedules fn and returns immediately. Calls are started in the order
// they are scheduled; their completion order is unspecified.
func (d *dispatcher) Go(ctx context.Context, kind string, fn func(context.Context) error) {
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.fail(detached, kind, fmt.Errorf("panic: %v", r))
			}
		}()
		if err := fn(detached); err != nil {
			d.fail(detached, kind, err)
		}
	}()
}

func (d *dispatcher) fail(ctx context.Context, kind string, err error) {
	d.logger.Debug("report dispatch failed", "kind", kind, "err", err)
	if d.onFail != nil {
		d.onFail(ctx, kind, err)
	}
}

// Wait blocks until every scheduled call has finished.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}
