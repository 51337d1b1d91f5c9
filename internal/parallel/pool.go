// Package parallel provides controlled concurrent execution for batched
// heuristic evaluations. An outer search that scores many successor states
// per expansion hands each worker its own evaluation; the heuristic objects
// themselves are shared read-only, so no synchronization beyond the batch
// barrier is required.
package parallel

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrNoWork is returned when a batch of size zero is submitted.
var ErrNoWork = errors.New("parallel: empty batch")

// Pool bounds the number of goroutines used per batch. The zero value is
// not usable; call NewPool.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker bound. A bound of zero or
// less defaults to the number of CPU cores.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the pool's concurrency bound.
func (p *Pool) Workers() int { return p.workers }

// Map runs eval(i) for every i in [0, n) across the pool's workers and
// blocks until all complete. The first error cancels outstanding work
// through the context and is returned. eval must confine its writes to
// the i-th slot of any shared result slice.
func (p *Pool) Map(ctx context.Context, n int, eval func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ErrNoWork
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return eval(ctx, i)
		})
	}
	return g.Wait()
}
