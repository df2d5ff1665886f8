// Package ctxutil ties contexts to the lifetime of the process.
package ctxutil

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
)

// WithLifetime returns a context that expires when the process receives
// SIGINT or SIGTERM.
func WithLifetime(ctx context.Context) (context.Context, context.CancelFunc) {
	return WithSignals(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// WithSignals returns a context that expires when the process receives
// any of the specified signals.  Err reports the signal received.
func WithSignals(ctx context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, sigs...)

	sctx := &sigctx{Context: ctx}

	go func() {
		defer signal.Stop(sigch)

		select {
		case sig := <-sigch:
			sctx.setErr(SignalError{Signal: sig})
			cancel()
		case <-ctx.Done():
		}
	}()

	return sctx, cancel
}

type sigctx struct {
	mu  sync.RWMutex
	err error

	context.Context
}

func (ctx *sigctx) setErr(err error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	ctx.err = err
}

func (ctx *sigctx) Err() error {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	if ctx.err != nil {
		return ctx.err
	}

	return ctx.Context.Err()
}

// SignalError is reported by contexts that expired because the process
// received a signal.
type SignalError struct{ Signal os.Signal }

func (e SignalError) Error() string {
	return "signal received: " + e.Signal.String()
}

// IsSignal reports whether err was caused by a signal.
func IsSignal(err error) bool {
	var se SignalError
	return errors.As(err, &se)
}
