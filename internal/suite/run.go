package suite

import (
	"context"
	"io"
	"runtime"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/unbound-force/typesafe/internal/taxonomy"
)

var discard = charmlog.New(io.Discard)

// RunAll runs items with at most jobs running at once and returns
// their results in item order. jobs <= 0 means GOMAXPROCS. Each
// item owns its file and its checker process, so items share no
// state.
//
// Items cancelled before they start get no result; the returned
// error is then the context's error.
func RunAll(ctx context.Context, items []Runnable, jobs int) ([]*taxonomy.FileResult, error) {
	results := make([]*taxonomy.FileResult, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(items)))

	for i, it := range items {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = it.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return compact(results), err
	}
	return results, nil
}

// Failed counts results with at least one mismatch.
func Failed(results []*taxonomy.FileResult) int {
	n := 0
	for _, r := range results {
		if !r.Passed() {
			n++
		}
	}
	return n
}

func compact(results []*taxonomy.FileResult) []*taxonomy.FileResult {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
