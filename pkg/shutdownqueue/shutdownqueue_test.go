package shutdownqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_RunsInLIFOOrder(t *testing.T) {
	var q Queue
	var order []int

	for n := 0; n < 3; n++ {
		n := n
		q.Add(func(context.Context) error {
			order = append(order, n)
			return nil
		})
	}

	require.NoError(t, q.Shutdown(context.Background()))
	assert.Equal(t, []int{2, 1, 0}, order)
}

func TestShutdown_AggregatesErrors(t *testing.T) {
	var q Queue
	errA := errors.New("a")
	errB := errors.New("b")

	q.Add(func(context.Context) error { return errA })
	q.Add(func(context.Context) error { return nil })
	q.Add(func(context.Context) error { return errB })

	err := q.Shutdown(context.Background())

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestShutdown_RecoversPanics(t *testing.T) {
	var q Queue
	ran := false

	q.Add(func(context.Context) error {
		ran = true
		return nil
	})
	q.Add(func(context.Context) error { panic("boom") })

	err := q.Shutdown(context.Background())

	assert.ErrorContains(t, err, "boom")
	assert.True(t, ran, "tasks after a panicking one still run")
}

func TestShutdown_Idempotent(t *testing.T) {
	var q Queue
	runs := 0

	q.Add(func(context.Context) error {
		runs++
		return nil
	})

	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, q.Shutdown(context.Background()))
	assert.Equal(t, 1, runs)
}

func TestAdd_IgnoredAfterShutdown(t *testing.T) {
	var q Queue
	require.NoError(t, q.Shutdown(context.Background()))

	q.Add(func(context.Context) error {
		t.Fatal("late task must not run")
		return nil
	})

	require.NoError(t, q.Shutdown(context.Background()))
}

func TestShutdown_HonorsContext(t *testing.T) {
	var q Queue
	ctx, cancel := context.WithCancel(context.Background())

	q.Add(func(context.Context) error {
		t.Fatal("must not run after cancel")
		return nil
	})
	cancel()

	err := q.Shutdown(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
