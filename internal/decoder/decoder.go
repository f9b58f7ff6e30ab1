// Package decoder turns raw store objects into typed social entities.
//
// Decoding is a closed tagged-variant step: the object's type tag selects exactly one
// entity shape, unknown tags and malformed fields decode to nothing and never error.
package decoder

import (
	"github.com/tidwall/gjson"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/objectstore"
)

// Decoded is the tagged union produced by Decode; exactly one pointer matching Kind is set
type Decoded struct {
	Kind              domain.TypeKind
	Profile           *domain.Profile
	Post              *domain.Post
	Comment           *domain.Comment
	FollowToken       *domain.FollowToken
	LikeToken         *domain.LikeToken
	ProfilesRegistry  *domain.ProfilesRegistry
	FollowersRegistry *domain.FollowersRegistry
	PostsRegistry     *domain.PostsRegistry
	LikesRegistry     *domain.LikesRegistry
	CommentsRegistry  *domain.CommentsRegistry
}

// OK reports whether the object decoded to a known entity
func (d Decoded) OK() bool {
	return d.Kind != ""
}

// Decoder decodes objects of one deployed package
type Decoder struct {
	tags domain.TypeTags
}

// New creates a decoder for the given type tags
func New(tags domain.TypeTags) *Decoder {
	return &Decoder{tags: tags}
}

// Tags returns the type tags the decoder matches against
func (d *Decoder) Tags() domain.TypeTags {
	return d.tags
}

// Decode dispatches on the object's type tag
func (d *Decoder) Decode(o *objectstore.Object) Decoded {
	if !o.IsMoveObject() {
		return Decoded{}
	}
	kind, ok := d.tags.KindOf(o.Type)
	if !ok {
		return Decoded{}
	}
	f := gjson.ParseBytes(o.Fields)
	if !f.IsObject() {
		return Decoded{}
	}

	var out Decoded
	switch kind {
	case domain.KindProfile:
		out.Profile = profile(o, f)
	case domain.KindPost:
		out.Post = post(o, f)
	case domain.KindComment:
		out.Comment = comment(o, f)
	case domain.KindFollowToken:
		out.FollowToken = followToken(o, f)
	case domain.KindLikeToken:
		out.LikeToken = likeToken(o, f)
	case domain.KindProfilesRegistry:
		out.ProfilesRegistry = &domain.ProfilesRegistry{
			ID:          o.ObjectID,
			Profiles:    ReadVector(f.Get("profiles")),
			OwnersTable: TableID(f.Get("owners")),
		}
	case domain.KindFollowersRegistry:
		out.FollowersRegistry = &domain.FollowersRegistry{ID: o.ObjectID, CountsTable: TableID(f.Get("counts"))}
	case domain.KindPostsRegistry:
		out.PostsRegistry = &domain.PostsRegistry{ID: o.ObjectID, PostsOfTable: TableID(f.Get("posts_of"))}
	case domain.KindLikesRegistry:
		out.LikesRegistry = &domain.LikesRegistry{ID: o.ObjectID, CountsTable: TableID(f.Get("counts"))}
	case domain.KindCommentsRegistry:
		out.CommentsRegistry = &domain.CommentsRegistry{
			ID:              o.ObjectID,
			CommentsOfTable: TableID(f.Get("comments_of")),
			CountsTable:     TableID(f.Get("counts")),
		}
	}
	if out.isEmpty() {
		return Decoded{}
	}
	out.Kind = kind
	return out
}

func (d Decoded) isEmpty() bool {
	return d.Profile == nil && d.Post == nil && d.Comment == nil &&
		d.FollowToken == nil && d.LikeToken == nil &&
		d.ProfilesRegistry == nil && d.FollowersRegistry == nil &&
		d.PostsRegistry == nil && d.LikesRegistry == nil && d.CommentsRegistry == nil
}

// Profile decodes o as a profile
func (d *Decoder) Profile(o *objectstore.Object) (*domain.Profile, bool) {
	v := d.Decode(o)
	return v.Profile, v.Profile != nil
}

// Post decodes o as a post
func (d *Decoder) Post(o *objectstore.Object) (*domain.Post, bool) {
	v := d.Decode(o)
	return v.Post, v.Post != nil
}

// Comment decodes o as a comment
func (d *Decoder) Comment(o *objectstore.Object) (*domain.Comment, bool) {
	v := d.Decode(o)
	return v.Comment, v.Comment != nil
}

// Relationship decodes o as a follow or like token of the requested kind
func (d *Decoder) Relationship(o *objectstore.Object, kind domain.RelationshipKind) (*domain.RelationshipToken, bool) {
	v := d.Decode(o)
	switch {
	case kind == domain.RelationshipFollow && v.FollowToken != nil:
		return &domain.RelationshipToken{
			ID:     v.FollowToken.ID,
			Kind:   kind,
			Holder: v.FollowToken.Follower,
			Target: v.FollowToken.FollowedProfileID,
		}, true
	case kind == domain.RelationshipLike && v.LikeToken != nil:
		return &domain.RelationshipToken{
			ID:     v.LikeToken.ID,
			Kind:   kind,
			Holder: v.LikeToken.Liker,
			Target: v.LikeToken.PostID,
		}, true
	}
	return nil, false
}

func profile(o *objectstore.Object, f gjson.Result) *domain.Profile {
	owner := str(f, "owner")
	if owner == "" {
		return nil
	}
	return &domain.Profile{
		ID:          o.ObjectID,
		Owner:       owner,
		Username:    str(f, "username"),
		Description: str(f, "description"),
		AvatarURL:   str(f, "avatar_url"),
		Followers:   ReadVector(f.Get("followers")),
		Followed:    ReadVector(f.Get("followed")),
	}
}

func post(o *objectstore.Object, f gjson.Result) *domain.Post {
	authorProfile := str(f, "author_profile_id")
	if authorProfile == "" {
		return nil
	}
	return &domain.Post{
		ID:              o.ObjectID,
		AuthorProfileID: authorProfile,
		Author:          str(f, "author"),
		Content:         str(f, "content"),
		CreatedMs:       domain.UnixMs(f.Get("created_ms").Int()),
		UpdatedMs:       domain.UnixMs(f.Get("updated_ms").Int()),
	}
}

func comment(o *objectstore.Object, f gjson.Result) *domain.Comment {
	postID := str(f, "post_id")
	if postID == "" {
		return nil
	}
	return &domain.Comment{
		ID:              o.ObjectID,
		PostID:          postID,
		Author:          str(f, "author"),
		AuthorProfileID: str(f, "author_profile_id"),
		Content:         str(f, "content"),
		CreatedMs:       domain.UnixMs(f.Get("created_ms").Int()),
		UpdatedMs:       domain.UnixMs(f.Get("updated_ms").Int()),
	}
}

func followToken(o *objectstore.Object, f gjson.Result) *domain.FollowToken {
	follower := str(f, "follower")
	followed := str(f, "followed_profile_id")
	if follower == "" || followed == "" {
		return nil
	}
	return &domain.FollowToken{ID: o.ObjectID, Follower: follower, FollowedProfileID: followed}
}

func likeToken(o *objectstore.Object, f gjson.Result) *domain.LikeToken {
	postID := str(f, "post_id")
	if postID == "" {
		return nil
	}
	liker := str(f, "liker")
	if liker == "" {
		liker = o.Owner
	}
	return &domain.LikeToken{ID: o.ObjectID, Liker: liker, PostID: postID}
}

// str returns a string member, or "" when it is absent or not a string
func str(f gjson.Result, path string) string {
	v := f.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}
