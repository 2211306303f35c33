package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkQueue_FIFO(t *testing.T) {
	q := NewWorkQueue(4)
	first := &Task{Element: "first"}
	second := &Task{Element: "second"}

	require.NoError(t, q.Enqueue(first))
	require.NoError(t, q.Enqueue(second))

	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, first, got)

	got, ok = q.Dequeue()
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestWorkQueue_FullRejectsWithoutBlocking(t *testing.T) {
	q := NewWorkQueue(1)
	require.NoError(t, q.Enqueue(&Task{Element: "a"}))

	err := q.Enqueue(&Task{Element: "b"})
	require.ErrorIs(t, err, ErrQueueFull)

	// The rejected task must not have displaced the queued one.
	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", got.Element)
}

func TestWorkQueue_CloseDrainsThenSignals(t *testing.T) {
	q := NewWorkQueue(2)
	require.NoError(t, q.Enqueue(&Task{Element: "pending"}))

	q.Close()
	q.Close() // idempotent

	got, ok := q.Dequeue()
	require.True(t, ok, "tasks enqueued before Close must still be delivered")
	assert.Equal(t, "pending", got.Element)

	_, ok = q.Dequeue()
	assert.False(t, ok, "a drained closed queue must signal shutdown")
}
