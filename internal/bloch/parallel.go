package bloch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachChunk runs fn over contiguous spin ranges covering [0, n). At most
// in.workers ranges are used and none is smaller than in.minChunk unless n
// itself is.
func (in *Integrator) forEachChunk(ctx context.Context, n int, fn func(ctx context.Context, lo, hi int) error) error {
	workers := in.workers
	if n/in.minChunk < workers {
		workers = n / in.minChunk
	}
	if workers <= 1 {
		return fn(ctx, 0, n)
	}

	chunkSize := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		g.Go(func() error {
			return fn(gctx, lo, hi)
		})
	}
	return g.Wait()
}
