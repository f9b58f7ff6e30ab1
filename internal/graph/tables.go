package graph

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/decoder"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
	"github.com/feral-file/ff-social/internal/objectstore"
)

func isNotFound(err error) bool {
	return errors.Is(err, objectstore.ErrObjectNotFound)
}

// entry performs one point lookup; an absent table or key yields nil
func (r *Reconstructor) entry(ctx context.Context, table, key string) (*objectstore.Object, error) {
	if table == "" || key == "" {
		return nil, nil
	}
	obj, err := r.store.GetKeyedEntry(ctx, table, key)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s[%s]: %w", table, key, err)
	}
	return obj, nil
}

// ReadKeyedVector returns the identifier vector stored under key in table,
// or an empty list when the key is absent
func (r *Reconstructor) ReadKeyedVector(ctx context.Context, table, key string) ([]string, error) {
	obj, err := r.entry(ctx, table, key)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, v := range decoder.EntryVector(obj) {
		if domain.IsIdentifierShaped(v) {
			ids = append(ids, v)
		}
	}
	return domain.UniqueIDs(ids), nil
}

// ReadKeyedCount returns the counter stored under key in table, or 0 when the key is absent
func (r *Reconstructor) ReadKeyedCount(ctx context.Context, table, key string) (uint64, error) {
	obj, err := r.entry(ctx, table, key)
	if err != nil {
		return 0, err
	}
	return decoder.EntryCount(obj), nil
}

// ListTableKeys pages through every entry of table and returns its
// identifier-shaped keys, deduplicated
func (r *Reconstructor) ListTableKeys(ctx context.Context, table string) ([]string, error) {
	keys := []string{}
	if table == "" {
		return keys, nil
	}

	cursor := ""
	for page := 1; ; page++ {
		res, err := r.store.ListKeys(ctx, table, cursor, r.config.KeysPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list keys of %s: %w", table, err)
		}
		for _, f := range res.Items {
			if domain.IsIdentifierShaped(f.Key) {
				keys = append(keys, f.Key)
			}
		}

		logger.DebugCtx(ctx, "Listed table keys page",
			zap.String("table", table),
			zap.Int("page", page),
			zap.Int("items", len(res.Items)),
		)

		if !res.HasMore || res.NextCursor == "" || res.NextCursor == cursor {
			break
		}
		cursor = res.NextCursor
	}
	return domain.UniqueIDs(keys), nil
}
