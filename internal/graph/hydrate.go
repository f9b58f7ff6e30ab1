package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
	"github.com/feral-file/ff-social/internal/objectstore"
)

// Hydrate fetches ids in chunks of the batch size, one call per chunk, chunk
// after chunk. Ids that do not exist are dropped.
func (r *Reconstructor) Hydrate(ctx context.Context, ids []string) ([]objectstore.Object, error) {
	ids = domain.UniqueIDs(ids)
	out := make([]objectstore.Object, 0, len(ids))
	for start := 0; start < len(ids); start += r.config.BatchSize {
		chunk := ids[start:min(start+r.config.BatchSize, len(ids))]
		objs, err := r.store.GetObjects(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to hydrate %d objects: %w", len(chunk), err)
		}
		out = append(out, objs...)
	}

	if dropped := len(ids) - len(out); dropped > 0 {
		logger.DebugCtx(ctx, "Some objects were not found", zap.Int("requested", len(ids)), zap.Int("missing", dropped))
	}
	return out, nil
}

// HydratePosts fetches ids and keeps only the ones that decode as posts
func (r *Reconstructor) HydratePosts(ctx context.Context, ids []string) ([]domain.Post, error) {
	objs, err := r.Hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}
	posts := make([]domain.Post, 0, len(objs))
	for i := range objs {
		if p, ok := r.decoder.Post(&objs[i]); ok {
			posts = append(posts, *p)
		}
	}
	return posts, nil
}

// HydrateProfiles fetches ids and keeps only the ones that decode as profiles
func (r *Reconstructor) HydrateProfiles(ctx context.Context, ids []string) ([]domain.Profile, error) {
	objs, err := r.Hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, 0, len(objs))
	for i := range objs {
		if p, ok := r.decoder.Profile(&objs[i]); ok {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

// HydrateComments fetches ids and keeps only the ones that decode as comments
func (r *Reconstructor) HydrateComments(ctx context.Context, ids []string) ([]domain.Comment, error) {
	objs, err := r.Hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(objs))
	for i := range objs {
		if c, ok := r.decoder.Comment(&objs[i]); ok {
			comments = append(comments, *c)
		}
	}
	return comments, nil
}
