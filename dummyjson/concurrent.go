package dummyjson

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the in-flight requests of a batch fetch
const DefaultConcurrency = 5

// FetchError records one failed ID of a batch fetch
type FetchError struct {
	ID  int
	Err error
}

// Error implements the error interface
func (e FetchError) Error() string {
	return fmt.Sprintf("id %d: %v", e.ID, e.Err)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// BatchResult holds the outcome of a batch fetch. Found and Failed keep the
// order of the requested IDs.
type BatchResult[T any] struct {
	Found  []*T
	Failed []FetchError
}

// GetMany fetches users concurrently. A failing ID does not stop the
// others; it is reported in Failed. The returned error is non-nil only when
// ctx ends before the batch completes.
func (c *UserClient) GetMany(ctx context.Context, ids []int) (BatchResult[User], error) {
	return fetchMany(ctx, ids, c.Get, func(id int, err error) {
		c.logger.Warn().Err(err).Int("user_id", id).Msg("Failed to fetch user")
	})
}

// GetMany fetches products concurrently, like UserClient.GetMany
func (c *ProductClient) GetMany(ctx context.Context, ids []int) (BatchResult[Product], error) {
	return fetchMany(ctx, ids, c.Get, func(id int, err error) {
		c.logger.Warn().Err(err).Int("product_id", id).Msg("Failed to fetch product")
	})
}

func fetchMany[T any](ctx context.Context, ids []int, get func(context.Context, int) (*T, error), onError func(int, error)) (BatchResult[T], error) {
	var result BatchResult[T]
	if len(ids) == 0 {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)

	found := make([]*T, len(ids))
	failed := make([]error, len(ids))

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			item, err := get(gctx, id)
			if err != nil {
				onError(id, err)
				failed[i] = err
				return nil
			}

			found[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	for i, id := range ids {
		switch {
		case failed[i] != nil:
			result.Failed = append(result.Failed, FetchError{ID: id, Err: failed[i]})
		case found[i] != nil:
			result.Found = append(result.Found, found[i])
		}
	}
	return result, nil
}
