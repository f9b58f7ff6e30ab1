// Package graph reconstructs the social graph views (feeds, following lists,
// leaderboards) from registries, per-key table lookups and batched object reads.
//
// Nothing here is authoritative: every call re-derives its view from the object
// store and either returns the whole view or an error, never a partial list.
package graph

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/decoder"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
	"github.com/feral-file/ff-social/internal/objectstore"
)

// Config holds the paging and fan-out parameters of the reconstruction layer
type Config struct {
	OwnedPageSize int // Objects per ownership scan page
	KeysPageSize  int // Entries per table key enumeration page
	BatchSize     int // Ids per multi-get call, capped at objectstore.MaxBatchSize
	AuthorFanout  int // Concurrent per-author post vector lookups
	CountFanout   int // Concurrent per-profile follower count lookups

	Registries domain.RegistryIDs
}

// DefaultConfig returns the paging parameters the store is known to accept
func DefaultConfig(registries domain.RegistryIDs) Config {
	return Config{
		OwnedPageSize: 50,
		KeysPageSize:  200,
		BatchSize:     objectstore.MaxBatchSize,
		AuthorFanout:  25,
		CountFanout:   40,
		Registries:    registries,
	}
}

// Tables are the table handles nested in the registries.
// An empty handle means the registry is not deployed or could not be read.
type Tables struct {
	ProfileOwners  string
	FollowerCounts string
	PostsOf        string
	LikeCounts     string
	CommentsOf     string
	CommentCounts  string
}

// Reconstructor assembles derived views from an object store
type Reconstructor struct {
	config  Config
	store   objectstore.ObjectStore
	decoder *decoder.Decoder

	// table handles never change once a registry is published
	mu     sync.Mutex
	tables *Tables
}

// New creates a reconstructor
func New(cfg Config, store objectstore.ObjectStore, dec *decoder.Decoder) *Reconstructor {
	if cfg.OwnedPageSize <= 0 {
		cfg.OwnedPageSize = 50
	}
	if cfg.KeysPageSize <= 0 {
		cfg.KeysPageSize = 200
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > objectstore.MaxBatchSize {
		cfg.BatchSize = objectstore.MaxBatchSize
	}
	if cfg.AuthorFanout <= 0 {
		cfg.AuthorFanout = 25
	}
	if cfg.CountFanout <= 0 {
		cfg.CountFanout = 40
	}
	return &Reconstructor{
		config:  cfg,
		store:   store,
		decoder: dec,
	}
}

// Config returns the effective configuration
func (r *Reconstructor) Config() Config {
	return r.config
}

// Registries resolves the table handles of every configured registry with a single batch read
func (r *Reconstructor) Registries(ctx context.Context) (Tables, error) {
	r.mu.Lock()
	if r.tables != nil {
		t := *r.tables
		r.mu.Unlock()
		return t, nil
	}
	r.mu.Unlock()

	ids := domain.UniqueIDs([]string{
		r.config.Registries.Profiles,
		r.config.Registries.Followers,
		r.config.Registries.Posts,
		r.config.Registries.Likes,
		r.config.Registries.Comments,
	})
	objs, err := r.store.GetObjects(ctx, ids)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read registries: %w", err)
	}

	var t Tables
	for i := range objs {
		d := r.decoder.Decode(&objs[i])
		switch {
		case d.ProfilesRegistry != nil:
			t.ProfileOwners = d.ProfilesRegistry.OwnersTable
		case d.FollowersRegistry != nil:
			t.FollowerCounts = d.FollowersRegistry.CountsTable
		case d.PostsRegistry != nil:
			t.PostsOf = d.PostsRegistry.PostsOfTable
		case d.LikesRegistry != nil:
			t.LikeCounts = d.LikesRegistry.CountsTable
		case d.CommentsRegistry != nil:
			t.CommentsOf = d.CommentsRegistry.CommentsOfTable
			t.CommentCounts = d.CommentsRegistry.CountsTable
		}
	}

	logger.DebugCtx(ctx, "Resolved registry tables",
		zap.String("posts_of", t.PostsOf),
		zap.String("follower_counts", t.FollowerCounts),
		zap.String("comments_of", t.CommentsOf),
	)

	// Only cache a complete resolution so a registry published later is picked up
	if t.ProfileOwners != "" && t.FollowerCounts != "" && t.PostsOf != "" &&
		t.LikeCounts != "" && t.CommentsOf != "" && t.CommentCounts != "" {
		r.mu.Lock()
		r.tables = &t
		r.mu.Unlock()
	}
	return t, nil
}

// ProfileList reads the flat member list of the profiles registry, deduplicated.
// A missing registry yields an empty list.
func (r *Reconstructor) ProfileList(ctx context.Context) ([]string, error) {
	if r.config.Registries.Profiles == "" {
		return []string{}, nil
	}
	obj, err := r.getObject(ctx, r.config.Registries.Profiles)
	if err != nil || obj == nil {
		return []string{}, err
	}
	d := r.decoder.Decode(obj)
	if d.ProfilesRegistry == nil {
		logger.WarnCtx(ctx, "Profiles registry has an unexpected shape", zap.String("id", obj.ObjectID), zap.String("type", obj.Type))
		return []string{}, nil
	}
	return domain.UniqueIDs(d.ProfilesRegistry.Profiles), nil
}

// getObject returns nil without error when the object does not exist
func (r *Reconstructor) getObject(ctx context.Context, id string) (*objectstore.Object, error) {
	obj, err := r.store.GetObject(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}
