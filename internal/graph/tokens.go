package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
)

// ScanOwnedTokens pages through every object owned by owner and returns the
// relationship tokens of kind held by owner, in scan order and without duplicates.
// When target is set the scan stops at the first token pointing at it and
// returns only that token.
func (r *Reconstructor) ScanOwnedTokens(ctx context.Context, owner string, kind domain.RelationshipKind, target string) ([]domain.RelationshipToken, error) {
	tokens := []domain.RelationshipToken{}
	if owner == "" {
		return tokens, nil
	}

	seen := map[string]bool{}
	cursor := ""
	for page := 1; ; page++ {
		res, err := r.store.GetOwnedObjects(ctx, owner, cursor, r.config.OwnedPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to scan objects owned by %s: %w", owner, err)
		}

		logger.DebugCtx(ctx, "Scanned owned objects page",
			zap.String("owner", owner),
			zap.String("kind", string(kind)),
			zap.Int("page", page),
			zap.Int("items", len(res.Items)),
			zap.Bool("has_more", res.HasMore),
		)

		for i := range res.Items {
			tok, ok := r.decoder.Relationship(&res.Items[i], kind)
			if !ok || !domain.SameID(tok.Holder, owner) {
				continue
			}
			if target != "" && domain.SameID(tok.Target, target) {
				return []domain.RelationshipToken{*tok}, nil
			}
			key := domain.NormalizeID(tok.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			tokens = append(tokens, *tok)
		}

		if !res.HasMore {
			break
		}
		if res.NextCursor == "" || res.NextCursor == cursor {
			logger.WarnCtx(ctx, "Ownership scan reported more pages without a new cursor",
				zap.String("owner", owner),
				zap.Int("page", page),
			)
			break
		}
		cursor = res.NextCursor
	}

	if target != "" {
		return []domain.RelationshipToken{}, nil
	}
	return tokens, nil
}

// FindFollowToken returns the id of the follow token owner holds for profileID.
// The first token encountered wins when several exist for the same pair.
func (r *Reconstructor) FindFollowToken(ctx context.Context, owner, profileID string) (string, bool, error) {
	return r.findToken(ctx, owner, domain.RelationshipFollow, profileID)
}

// FindLikeToken returns the id of the like token owner holds for postID
func (r *Reconstructor) FindLikeToken(ctx context.Context, owner, postID string) (string, bool, error) {
	return r.findToken(ctx, owner, domain.RelationshipLike, postID)
}

func (r *Reconstructor) findToken(ctx context.Context, owner string, kind domain.RelationshipKind, target string) (string, bool, error) {
	if owner == "" || target == "" {
		return "", false, nil
	}
	tokens, err := r.ScanOwnedTokens(ctx, owner, kind, target)
	if err != nil {
		return "", false, err
	}
	if len(tokens) == 0 {
		return "", false, nil
	}
	return tokens[0].ID, true, nil
}
