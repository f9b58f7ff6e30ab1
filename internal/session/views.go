package session

import (
	"context"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/graph"
)

// Graph is the read side the views derive from
type Graph interface {
	GlobalFeed(ctx context.Context, viewer string) (*graph.Feed, error)
	ProfileFeed(ctx context.Context, profileID, viewer string) (*graph.Feed, error)
	FollowingList(ctx context.Context, actor string) ([]graph.Following, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Comments(ctx context.Context, postID string) ([]domain.Comment, error)
}

// TokenDiscoverer polls for a relationship token that should soon exist
type TokenDiscoverer interface {
	Discover(ctx context.Context, kind domain.RelationshipKind, owner, target string) (string, bool, error)
}

var _ Graph = (*graph.Reconstructor)(nil)

// HomeFeedView is the global feed; its input is the viewer address
type HomeFeedView = View[string, *graph.Feed]

// NewHomeFeedView creates the global feed view
func NewHomeFeedView(ctx context.Context, g Graph, clock adapter.Clock) *HomeFeedView {
	return NewView(ctx, "home-feed", clock, func(ctx context.Context, viewer string) (*graph.Feed, error) {
		return g.GlobalFeed(ctx, viewer)
	})
}

// ProfileFeedInput selects whose posts to show and who is looking
type ProfileFeedInput struct {
	ProfileID string
	Viewer    string
}

// ProfileFeedView is one profile's posts
type ProfileFeedView = View[ProfileFeedInput, *graph.Feed]

// NewProfileFeedView creates a profile feed view
func NewProfileFeedView(ctx context.Context, g Graph, clock adapter.Clock) *ProfileFeedView {
	return NewView(ctx, "profile-feed", clock, func(ctx context.Context, in ProfileFeedInput) (*graph.Feed, error) {
		return g.ProfileFeed(ctx, in.ProfileID, in.Viewer)
	})
}

// FollowingView lists the profiles an account follows; its input is the account address
type FollowingView = View[string, []graph.Following]

// NewFollowingView creates a following list view
func NewFollowingView(ctx context.Context, g Graph, clock adapter.Clock) *FollowingView {
	return NewView(ctx, "following", clock, func(ctx context.Context, actor string) ([]graph.Following, error) {
		if actor == "" {
			return []graph.Following{}, nil
		}
		return g.FollowingList(ctx, actor)
	})
}

// LeaderboardView ranks profiles by followers; its input is the row limit
type LeaderboardView = View[int, []domain.LeaderboardEntry]

// NewLeaderboardView creates a leaderboard view
func NewLeaderboardView(ctx context.Context, g Graph, clock adapter.Clock) *LeaderboardView {
	return NewView(ctx, "leaderboard", clock, func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
		return g.Leaderboard(ctx, limit)
	})
}

// CommentsView lists the comments of a post; its input is the post id
type CommentsView = View[string, []domain.Comment]

// NewCommentsView creates a comments view
func NewCommentsView(ctx context.Context, g Graph, clock adapter.Clock) *CommentsView {
	return NewView(ctx, "comments", clock, func(ctx context.Context, postID string) ([]domain.Comment, error) {
		return g.Comments(ctx, postID)
	})
}

// RelationshipInput names the token to look for
type RelationshipInput struct {
	Kind   domain.RelationshipKind
	Owner  string
	Target string
}

// Relationship is the discovered state of a follow or like
type Relationship struct {
	TokenID string
	Found   bool
}

// RelationshipView tracks whether the owner holds a token for the target.
// Changing owner or target cancels the running discovery.
type RelationshipView = View[RelationshipInput, Relationship]

// NewRelationshipView creates a relationship view
func NewRelationshipView(ctx context.Context, d TokenDiscoverer, clock adapter.Clock) *RelationshipView {
	return NewView(ctx, "relationship", clock, func(ctx context.Context, in RelationshipInput) (Relationship, error) {
		id, found, err := d.Discover(ctx, in.Kind, in.Owner, in.Target)
		if err != nil {
			return Relationship{}, err
		}
		return Relationship{TokenID: id, Found: found}, nil
	})
}
