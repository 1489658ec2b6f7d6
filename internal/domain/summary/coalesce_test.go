package summary_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/stretchr/testify/require"
)

type blockingRecomputer struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingRecomputer) Recompute(context.Context) (*summary.Result, error) {
	n := b.calls.Add(1)
	if n == 1 {
		close(b.started)
		<-b.release
	}
	return &summary.Result{RunID: fmt.Sprint(n)}, nil
}

func TestCoalescer_FoldsConcurrentTriggersIntoOneRerun(t *testing.T) {
	ctx := context.Background()
	inner := &blockingRecomputer{started: make(chan struct{}), release: make(chan struct{})}
	c := summary.NewCoalescer(inner, nil)

	done := make(chan *summary.Result, 1)
	go func() {
		res, _ := c.Recompute(ctx)
		done <- res
	}()
	<-inner.started

	for range 3 {
		res, err := c.Recompute(ctx)
		require.NoError(t, err)
		require.Nil(t, res)
	}
	close(inner.release)

	res := <-done
	require.Equal(t, "2", res.RunID)
	require.Equal(t, int32(2), inner.calls.Load())

	res, err := c.Recompute(ctx)
	require.NoError(t, err)
	require.Equal(t, "3", res.RunID)
}

type failingRecomputer struct{ err error }

func (f failingRecomputer) Recompute(context.Context) (*summary.Result, error) {
	return nil, f.err
}

func TestCoalescer_PassesErrorsThrough(t *testing.T) {
	boom := errors.New("boom")
	c := summary.NewCoalescer(failingRecomputer{err: boom}, nil)

	res, err := c.Recompute(context.Background())
	require.ErrorIs(t, err, boom)
	require.Nil(t, res)

	// A failed run releases the in-flight slot.
	_, err = c.Recompute(context.Background())
	require.ErrorIs(t, err, boom)
}
