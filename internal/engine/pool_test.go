package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/spikegridgo/internal/sim"
)

func TestWorkerPool_ExecutesAllSubmittedTasks(t *testing.T) {
	pool := NewWorkerPool(2, 16)
	pool.Start(testContext(t))

	var executed atomic.Int64
	const total = 10
	for i := 0; i < total; i++ {
		task := observeTask(t, fmt.Sprintf("task-%d", i), func(sim.Snapshot) error {
			executed.Add(1)
			return nil
		})
		require.NoError(t, pool.Submit(task))
	}

	results, err := pool.Results().Drain(context.Background(), total, 0, time.Second)
	require.NoError(t, err)
	assert.Len(t, results, total)
	assert.EqualValues(t, total, executed.Load())

	require.NoError(t, pool.Stop())
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	pool := NewWorkerPool(workers, 64)
	pool.Start(testContext(t))

	var inFlight, peak atomic.Int64
	const total = 24
	for i := 0; i < total; i++ {
		task := observeTask(t, fmt.Sprintf("task-%d", i), func(sim.Snapshot) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		})
		require.NoError(t, pool.Submit(task))
	}

	_, err := pool.Results().Drain(context.Background(), total, 0, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, pool.Stop())

	assert.LessOrEqual(t, peak.Load(), int64(workers))
	assert.Positive(t, peak.Load())
}

func TestWorkerPool_SurvivesTaskFailure(t *testing.T) {
	pool := NewWorkerPool(1, 8)
	pool.Start(testContext(t))

	require.NoError(t, pool.Submit(observeTask(t, "bad", func(sim.Snapshot) error {
		panic("worker must outlive this")
	})))
	require.NoError(t, pool.Submit(observeTask(t, "good", func(sim.Snapshot) error {
		return nil
	})))

	results, err := pool.Results().Drain(context.Background(), 2, 0, time.Second)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byElement := map[string]*Result{}
	for _, r := range results {
		byElement[r.Task.Element] = r
	}
	assert.NotNil(t, byElement["bad"].Err)
	assert.Nil(t, byElement["good"].Err)

	require.NoError(t, pool.Stop())
}

func TestWorkerPool_StopIsIdempotentInEffectOnly(t *testing.T) {
	pool := NewWorkerPool(2, 8)
	pool.Start(testContext(t))

	require.NoError(t, pool.Stop())
	require.ErrorIs(t, pool.Stop(), ErrAlreadyStopped)
}

func TestWorkerPool_RejectsSubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(1, 8)
	pool.Start(testContext(t))
	require.NoError(t, pool.Stop())

	err := pool.Submit(observeTask(t, "late", nil))
	require.ErrorIs(t, err, ErrAlreadyStopped)
}

func TestWorkerPool_ReportsQueueFull(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	pool.Start(testContext(t))

	release := make(chan struct{})
	// Occupy the only worker so the queue cannot drain.
	require.NoError(t, pool.Submit(observeTask(t, "busy", func(sim.Snapshot) error {
		<-release
		return nil
	})))
	// Wait until the worker has taken the blocking task off the queue.
	require.Eventually(t, func() bool {
		return pool.Submit(observeTask(t, "buffered", nil)) == nil
	}, time.Second, time.Millisecond)

	err := pool.Submit(observeTask(t, "overflow", nil))
	require.ErrorIs(t, err, ErrQueueFull)

	close(release)
	_, err = pool.Results().Drain(context.Background(), 2, 0, time.Second)
	require.NoError(t, err)
	require.NoError(t, pool.Stop())
}
