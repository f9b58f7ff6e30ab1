package domain

// UnixMs is a timestamp in milliseconds since the Unix epoch, as stored on chain
type UnixMs int64

// Profile is a user profile object
type Profile struct {
	ID          string   `json:"id"`
	Owner       string   `json:"owner"`
	Username    string   `json:"username"`
	Description string   `json:"description"`
	AvatarURL   string   `json:"avatarUrl"`
	Followers   []string `json:"followers"`
	Followed    []string `json:"followed"`
}

// Post is a post authored by a profile
type Post struct {
	ID              string `json:"id"`
	AuthorProfileID string `json:"authorProfileId"`
	Author          string `json:"author"`
	Content         string `json:"content"`
	CreatedMs       UnixMs `json:"createdMs"`
	UpdatedMs       UnixMs `json:"updatedMs"`
}

// Comment is a comment attached to exactly one post
type Comment struct {
	ID              string `json:"id"`
	PostID          string `json:"postId"`
	Author          string `json:"author"`
	AuthorProfileID string `json:"authorProfileId"`
	Content         string `json:"content"`
	CreatedMs       UnixMs `json:"createdMs"`
	UpdatedMs       UnixMs `json:"updatedMs"`
}

// FollowToken is owned by Follower and proves that Follower follows FollowedProfileID
type FollowToken struct {
	ID                string `json:"id"`
	Follower          string `json:"follower"`
	FollowedProfileID string `json:"followedProfileId"`
}

// LikeToken is owned by Liker and proves that Liker likes PostID
type LikeToken struct {
	ID     string `json:"id"`
	Liker  string `json:"liker"`
	PostID string `json:"postId"`
}

// ProfilesRegistry lists every profile and maps owners to their profile
type ProfilesRegistry struct {
	ID          string   `json:"id"`
	Profiles    []string `json:"profiles"`
	OwnersTable string   `json:"ownersTableId,omitempty"`
}

// FollowersRegistry holds the followers-count-by-profile table
type FollowersRegistry struct {
	ID          string `json:"id"`
	CountsTable string `json:"countsTableId,omitempty"`
}

// PostsRegistry holds the posts-by-author table
type PostsRegistry struct {
	ID           string `json:"id"`
	PostsOfTable string `json:"postsOfTableId,omitempty"`
}

// LikesRegistry holds the likes-count-by-post table
type LikesRegistry struct {
	ID          string `json:"id"`
	CountsTable string `json:"countsTableId,omitempty"`
}

// CommentsRegistry holds the comments-by-post and comment-count-by-post tables
type CommentsRegistry struct {
	ID              string `json:"id"`
	CommentsOfTable string `json:"commentsOfTableId,omitempty"`
	CountsTable     string `json:"countsTableId,omitempty"`
}

// RegistryIDs are the object ids of the registries of one deployment
type RegistryIDs struct {
	Profiles  string
	Followers string
	Posts     string
	Likes     string
	Comments  string
}

// RelationshipKind identifies the kind of relationship token
type RelationshipKind string

const (
	RelationshipFollow RelationshipKind = "follow"
	RelationshipLike   RelationshipKind = "like"
)

// RelationshipToken is the common view over follow and like tokens:
// Holder owns the token and Target is the followed profile or liked post.
type RelationshipToken struct {
	ID     string
	Kind   RelationshipKind
	Holder string
	Target string
}

// LeaderboardEntry is one row of the top users view
type LeaderboardEntry struct {
	Profile   Profile `json:"profile"`
	Followers uint64  `json:"followers"`
	Rank      int     `json:"rank"`
}
