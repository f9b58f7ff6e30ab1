package graph

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/decoder"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/logger"
)

// Following is one row of a following list
type Following struct {
	Profile domain.Profile
	TokenID string
}

// FollowingList returns the profiles actor follows, by username then id
func (r *Reconstructor) FollowingList(ctx context.Context, actor string) ([]Following, error) {
	out := []Following{}
	tokens, err := r.ScanOwnedTokens(ctx, actor, domain.RelationshipFollow, "")
	if err != nil {
		return nil, err
	}

	tokenOf := map[string]string{}
	var targets []string
	for _, t := range tokens {
		if !domain.SameID(t.Holder, actor) || !domain.IsObjectID(t.Target) {
			continue
		}
		key := domain.NormalizeID(t.Target)
		if first, dup := tokenOf[key]; dup {
			logger.WarnCtx(ctx, "Duplicate follow tokens for the same profile, keeping the first",
				zap.String("actor", actor),
				zap.String("profile", t.Target),
				zap.String("kept", first),
				zap.String("ignored", t.ID),
			)
			continue
		}
		tokenOf[key] = t.ID
		targets = append(targets, t.Target)
	}
	if len(targets) == 0 {
		return out, nil
	}

	profiles, err := r.HydrateProfiles(ctx, targets)
	if err != nil {
		return nil, err
	}
	SortProfiles(profiles)
	for _, p := range profiles {
		out = append(out, Following{Profile: p, TokenID: tokenOf[domain.NormalizeID(p.ID)]})
	}
	return out, nil
}

// SortProfiles orders profiles by username, case-insensitively, then by id
func SortProfiles(profiles []domain.Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := strings.ToLower(profiles[i].Username), strings.ToLower(profiles[j].Username)
		if a != b {
			return a < b
		}
		return domain.NormalizeID(profiles[i].ID) < domain.NormalizeID(profiles[j].ID)
	})
}

// Leaderboard ranks registered profiles by follower count. limit <= 0 returns every profile.
// Profiles without a count entry rank with 0 followers.
func (r *Reconstructor) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries := []domain.LeaderboardEntry{}

	tables, err := r.Registries(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := r.ProfileList(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := r.HydrateProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return entries, nil
	}

	profileIDs := make([]string, len(profiles))
	for i, p := range profiles {
		profileIDs[i] = p.ID
	}
	counts, err := fanOut(ctx, r.config.CountFanout, profileIDs, func(ctx context.Context, id string) (uint64, error) {
		return r.ReadKeyedCount(ctx, tables.FollowerCounts, id)
	})
	if err != nil {
		return nil, err
	}

	for i, p := range profiles {
		entries = append(entries, domain.LeaderboardEntry{Profile: p, Followers: counts[i]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Followers != entries[j].Followers {
			return entries[i].Followers > entries[j].Followers
		}
		return domain.NormalizeID(entries[i].Profile.ID) < domain.NormalizeID(entries[j].Profile.ID)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Profile reads a single profile; ok is false when it does not exist or is not a profile
func (r *Reconstructor) Profile(ctx context.Context, id string) (*domain.Profile, bool, error) {
	obj, err := r.getObject(ctx, id)
	if err != nil || obj == nil {
		return nil, false, err
	}
	p, ok := r.decoder.Profile(obj)
	return p, ok, nil
}

// FollowersCount returns the follower count of a profile
func (r *Reconstructor) FollowersCount(ctx context.Context, profileID string) (uint64, error) {
	tables, err := r.Registries(ctx)
	if err != nil {
		return 0, err
	}
	return r.ReadKeyedCount(ctx, tables.FollowerCounts, profileID)
}

// ResolveProfileID finds the profile owned by owner, first through the owners
// table and then by scanning the registered profiles
func (r *Reconstructor) ResolveProfileID(ctx context.Context, owner string) (string, bool, error) {
	if owner == "" {
		return "", false, nil
	}
	tables, err := r.Registries(ctx)
	if err != nil {
		return "", false, err
	}
	obj, err := r.entry(ctx, tables.ProfileOwners, owner)
	if err != nil {
		return "", false, err
	}
	if id := decoder.EntryID(obj); domain.IsIdentifierShaped(id) {
		return id, true, nil
	}

	ids, err := r.ProfileList(ctx)
	if err != nil {
		return "", false, err
	}
	profiles, err := r.HydrateProfiles(ctx, ids)
	if err != nil {
		return "", false, err
	}
	for _, p := range profiles {
		if domain.SameID(p.Owner, owner) {
			return p.ID, true, nil
		}
	}
	return "", false, nil
}
