package ctxutil_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctxutil "github.com/wetware/greet/internal/util/ctx"
)

func TestWithSignals(t *testing.T) {
	ctx, cancel := ctxutil.WithSignals(context.Background(), syscall.SIGUSR1)
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second * 5):
		t.Fatal("context should expire on signal")
	}

	assert.True(t, ctxutil.IsSignal(ctx.Err()), "should report signal")
	assert.True(t, ctxutil.IsSignal(errors.Wrap(ctx.Err(), "wrapped")),
		"should report wrapped signal")
}

func TestCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := ctxutil.WithLifetime(context.Background())
	cancel()

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, ctxutil.IsSignal(ctx.Err()))
}
