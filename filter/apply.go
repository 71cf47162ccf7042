package filter

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the slice length below which ApplyConcurrent
// evaluates sequentially
const DefaultBatchSize = 100

// Apply returns the items matching f, in order. The first item that cannot
// be evaluated stops the scan with an *EvaluationError.
func Apply[T any](f *Filter, items []T) ([]T, error) {
	matches := make([]T, 0, len(items)/4)
	for i, item := range items {
		ok, err := f.Evaluate(item)
		if err != nil {
			return nil, withIndex(err, i)
		}
		if ok {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// ApplyConcurrent is Apply split into chunks evaluated in parallel. Order
// is preserved.
func ApplyConcurrent[T any](ctx context.Context, f *Filter, items []T) ([]T, error) {
	if len(items) < DefaultBatchSize {
		return Apply(f, items)
	}

	workers := runtime.GOMAXPROCS(0)
	chunkSize := max(len(items)/workers, DefaultBatchSize)
	chunks := (len(items) + chunkSize - 1) / chunkSize
	results := make([][]T, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for n := range chunks {
		start := n * chunkSize
		end := min(start+chunkSize, len(items))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches, err := Apply(f, items[start:end])
			if err != nil {
				return withIndex(err, start+indexOf(err))
			}
			results[n] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	all := make([]T, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func withIndex(err error, i int) error {
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		e := *evalErr
		e.Index = i
		return &e
	}
	return err
}

func indexOf(err error) int {
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) && evalErr.Index >= 0 {
		return evalErr.Index
	}
	return 0
}
