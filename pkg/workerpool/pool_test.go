package workerpool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown(context.Background())

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		err := pool.SubmitWait(context.Background(), "count", func(context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int64(n), count.Load())
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)

	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitWait(context.Background(), "block", func(context.Context) error {
		close(started)
		<-blocker
		return nil
	}))
	<-started

	// Queue holds 2×workers.
	require.NoError(t, pool.Submit("a", noop))
	require.NoError(t, pool.Submit("b", noop))

	assert.ErrorIs(t, pool.Submit("c", noop), workerpool.ErrPoolFull)

	close(blocker)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	require.NoError(t, pool.Shutdown(context.Background()))

	assert.ErrorIs(t, pool.Submit("late", noop), workerpool.ErrPoolClosed)
	assert.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_PanicAndErrorDoNotKillWorkers(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown(context.Background())

	require.NoError(t, pool.SubmitWait(context.Background(), "panic", func(context.Context) error {
		panic("boom")
	}))
	require.NoError(t, pool.SubmitWait(context.Background(), "fail", func(context.Context) error {
		return assert.AnError
	}))

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(context.Background(), "ok", func(context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	pool := workerpool.New(2)

	var count atomic.Int64
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.SubmitWait(context.Background(), "sleep", func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			count.Add(1)
			return nil
		}))
	}

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int64(4), count.Load())
}
