package graph

import (
	"context"
	"sort"

	"github.com/feral-file/ff-social/internal/domain"
)

// LikeState is the like counter of a post and the viewer's like token, if any
type LikeState struct {
	Count   uint64
	TokenID string
}

// Liked reports whether the viewer holds a like token for the post
func (s LikeState) Liked() bool {
	return s.TokenID != ""
}

// Post reads a single post; ok is false when it does not exist or is not a post
func (r *Reconstructor) Post(ctx context.Context, id string) (*domain.Post, bool, error) {
	obj, err := r.getObject(ctx, id)
	if err != nil || obj == nil {
		return nil, false, err
	}
	p, ok := r.decoder.Post(obj)
	return p, ok, nil
}

// Comments returns the comments on postID, oldest first
func (r *Reconstructor) Comments(ctx context.Context, postID string) ([]domain.Comment, error) {
	tables, err := r.Registries(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := r.ReadKeyedVector(ctx, tables.CommentsOf, postID)
	if err != nil {
		return nil, err
	}
	comments, err := r.HydrateComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := comments[:0]
	for _, c := range comments {
		if domain.SameID(c.PostID, postID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedMs != out[j].CreatedMs {
			return out[i].CreatedMs < out[j].CreatedMs
		}
		return domain.NormalizeID(out[i].ID) < domain.NormalizeID(out[j].ID)
	})
	return out, nil
}

// CommentCount returns the comment counter of a post
func (r *Reconstructor) CommentCount(ctx context.Context, postID string) (uint64, error) {
	tables, err := r.Registries(ctx)
	if err != nil {
		return 0, err
	}
	return r.ReadKeyedCount(ctx, tables.CommentCounts, postID)
}

// LikeCount returns the like counter of a post
func (r *Reconstructor) LikeCount(ctx context.Context, postID string) (uint64, error) {
	tables, err := r.Registries(ctx)
	if err != nil {
		return 0, err
	}
	return r.ReadKeyedCount(ctx, tables.LikeCounts, postID)
}

// LikeState reads the like counter of postID and the like token viewer holds for it
func (r *Reconstructor) LikeState(ctx context.Context, viewer, postID string) (LikeState, error) {
	count, err := r.LikeCount(ctx, postID)
	if err != nil {
		return LikeState{}, err
	}
	tokenID, _, err := r.FindLikeToken(ctx, viewer, postID)
	if err != nil {
		return LikeState{}, err
	}
	return LikeState{Count: count, TokenID: tokenID}, nil
}
