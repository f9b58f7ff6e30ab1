package graph

import (
	"context"

	"github.com/alitto/pond/v2"
)

// fanOut runs fn for every key, at most size at a time. Groups of size keys run
// one after the other; results come back in key order. The first error aborts.
func fanOut[T any](ctx context.Context, size int, keys []string, fn func(ctx context.Context, key string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	pool := pond.NewResultPool[T](size, pond.WithContext(ctx))
	defer pool.StopAndWait()

	for start := 0; start < len(keys); start += size {
		chunk := keys[start:min(start+size, len(keys))]
		group := pool.NewGroup()
		for _, key := range chunk {
			group.SubmitErr(func() (T, error) {
				return fn(ctx, key)
			})
		}
		results, err := group.Wait()
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}
