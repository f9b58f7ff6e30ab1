package graph

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
)

// Feed is an ordered list of posts with the profiles of their authors
type Feed struct {
	Posts []domain.Post
	// Authors maps a normalized profile id to the profile
	Authors map[string]domain.Profile
	// OwnPostIDs holds the normalized ids of the posts authored by the viewer
	OwnPostIDs map[string]bool
}

// Author returns the author profile of post, if hydrated
func (f *Feed) Author(post domain.Post) (domain.Profile, bool) {
	p, ok := f.Authors[domain.NormalizeID(post.AuthorProfileID)]
	return p, ok
}

// IsOwn reports whether the viewer authored the post
func (f *Feed) IsOwn(postID string) bool {
	return f.OwnPostIDs[domain.NormalizeID(postID)]
}

// GlobalFeed assembles the posts of every author who ever posted, newest first
func (r *Reconstructor) GlobalFeed(ctx context.Context, viewer string) (*Feed, error) {
	tables, err := r.Registries(ctx)
	if err != nil {
		return nil, err
	}

	authors, err := r.ListTableKeys(ctx, tables.PostsOf)
	if err != nil {
		return nil, err
	}

	vectors, err := fanOut(ctx, r.config.AuthorFanout, authors, func(ctx context.Context, author string) ([]string, error) {
		return r.ReadKeyedVector(ctx, tables.PostsOf, author)
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, v := range vectors {
		ids = append(ids, v...)
	}

	logger.DebugCtx(ctx, "Assembling global feed",
		zap.Int("authors", len(authors)),
		zap.Int("posts", len(ids)),
	)
	return r.assembleFeed(ctx, ids, viewer)
}

// ProfileFeed assembles the posts authored by a single profile, newest first.
// A profile that never posted yields an empty feed.
func (r *Reconstructor) ProfileFeed(ctx context.Context, profileID, viewer string) (*Feed, error) {
	tables, err := r.Registries(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := r.ReadKeyedVector(ctx, tables.PostsOf, profileID)
	if err != nil {
		return nil, err
	}
	return r.assembleFeed(ctx, ids, viewer)
}

func (r *Reconstructor) assembleFeed(ctx context.Context, ids []string, viewer string) (*Feed, error) {
	feed := &Feed{
		Posts:      []domain.Post{},
		Authors:    map[string]domain.Profile{},
		OwnPostIDs: map[string]bool{},
	}
	ids = domain.UniqueIDs(ids)
	if len(ids) == 0 {
		return feed, nil
	}

	posts, err := r.HydratePosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	SortPosts(posts)

	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorProfileID)
		if viewer != "" && domain.SameID(p.Author, viewer) {
			feed.OwnPostIDs[domain.NormalizeID(p.ID)] = true
		}
	}
	profiles, err := r.HydrateProfiles(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		feed.Authors[domain.NormalizeID(p.ID)] = p
	}

	feed.Posts = posts
	return feed, nil
}

// SortPosts orders posts newest first, breaking timestamp ties by id ascending
func SortPosts(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedMs != posts[j].CreatedMs {
			return posts[i].CreatedMs > posts[j].CreatedMs
		}
		return domain.NormalizeID(posts[i].ID) < domain.NormalizeID(posts[j].ID)
	})
}
