package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMapRunsEverySlot(t *testing.T) {
	pool := NewPool(4)
	results := make([]int, 100)
	err := pool.Map(context.Background(), len(results), func(_ context.Context, i int) error {
		results[i] = i * i
		return nil
	})
	require.NoError(t, err)
	for i, v := range results {
		require.Equal(t, i*i, v)
	}
}

func TestMapPropagatesFirstError(t *testing.T) {
	pool := NewPool(2)
	boom := errors.New("boom")
	var ran atomic.Int64
	err := pool.Map(context.Background(), 50, func(ctx context.Context, i int) error {
		ran.Add(1)
		if i == 3 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	// Cancellation keeps the tail from running to completion, but how much
	// ran before the error is scheduling-dependent.
	require.LessOrEqual(t, ran.Load(), int64(50))
}

func TestMapEmptyBatch(t *testing.T) {
	pool := NewPool(2)
	err := pool.Map(context.Background(), 0, func(context.Context, int) error { return nil })
	require.ErrorIs(t, err, ErrNoWork)
}

func TestMapHonoursCancelledContext(t *testing.T) {
	pool := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.Map(ctx, 10, func(context.Context, int) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestDefaultWorkerCount(t *testing.T) {
	require.Positive(t, NewPool(0).Workers())
	require.Equal(t, 3, NewPool(3).Workers())
}
