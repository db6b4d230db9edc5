package workers

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ForEach(t *testing.T) {
	p, err := New(4)
	require.NoError(t, err)
	defer p.Release()

	out := make([]int, 100)
	err = p.ForEach(context.Background(), len(out), func(i int) {
		out[i] = i * i
	})
	require.NoError(t, err)

	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
	assert.Equal(t, 4, p.Size())
}

func TestPool_ForEachBoundsConcurrency(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)
	defer p.Release()

	var running, peak atomic.Int32
	err = p.ForEach(context.Background(), 20, func(int) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		running.Add(-1)
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPool_ForEachCancelled(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err = p.ForEach(ctx, 10, func(int) { calls.Add(1) })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestPool_NilRunsInline(t *testing.T) {
	var p *Pool

	sum := 0
	err := p.ForEach(context.Background(), 5, func(i int) { sum += i })
	require.NoError(t, err)
	assert.Equal(t, 10, sum)
	assert.Equal(t, 1, p.Size())

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	<-done
	p.Release()
}

func TestPool_Submit(t *testing.T) {
	p, err := New(0)
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, 1, p.Size())

	done := make(chan int, 1)
	p.Submit(func() { done <- 42 })
	assert.Equal(t, 42, <-done)
}
