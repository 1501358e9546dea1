package repack

import (
	"context"
	"runtime"

	"github.com/zeebo/mon"
	"golang.org/x/sync/errgroup"
)

// parallelBlock is how many fields a worker writes between checks of its
// context.
const parallelBlock = 1 << 14

// MapParallel computes the same result as Map, splitting the destination
// into contiguous ranges that are transcoded concurrently by up to workers
// goroutines. If workers <= 0, GOMAXPROCS is used. Function transforms must
// be safe for concurrent use.
//
// If the context is canceled or the transform fails, the remaining work is
// abandoned and the error is returned. The destination may then be
// partially written.
func MapParallel[S, D Unsigned](ctx context.Context, src []S, dst []D, transform interface{},
	workers int, opts ...Option) (n int, err error) {
	defer mon.Start().Stop(&err)

	if ctx == nil {
		return 0, InvalidArgument.New("nil context")
	}

	p, fn, err := prepare[S, D](transform, opts)
	if err != nil {
		return 0, err
	}

	count := p.fields(len(src), len(dst))
	p.log("map parallel", count)

	if count == 0 {
		return 0, ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, count)
	chunk := (count + workers - 1) / workers

	group, ctx := errgroup.WithContext(ctx)
	for start := 0; start < count; start += chunk {
		end := min(start+chunk, count)
		group.Go(func() error {
			for lo := start; lo < end; lo += parallelBlock {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := transcode(p, src, dst, fn, lo, min(lo+parallelBlock, end)); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}
