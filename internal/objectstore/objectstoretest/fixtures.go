package objectstoretest

import (
	"strconv"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/objectstore"
)

// TableRef renders a nested table handle the way the fullnode does
func TableRef(id string) map[string]interface{} {
	return map[string]interface{}{
		"type": "0x2::table::Table<address, vector<address>>",
		"fields": map[string]interface{}{
			"id":   map[string]interface{}{"id": id},
			"size": "0",
		},
	}
}

// ProfileObject renders a profile as a raw object
func ProfileObject(tags domain.TypeTags, p domain.Profile) objectstore.Object {
	return MoveObject(p.ID, tags.Tag(domain.KindProfile), map[string]interface{}{
		"id":          map[string]interface{}{"id": p.ID},
		"owner":       p.Owner,
		"username":    p.Username,
		"description": p.Description,
		"avatar_url":  p.AvatarURL,
		"followers":   nonNil(p.Followers),
		"followed":    nonNil(p.Followed),
	})
}

// PostObject renders a post as a raw object
func PostObject(tags domain.TypeTags, p domain.Post) objectstore.Object {
	return MoveObject(p.ID, tags.Tag(domain.KindPost), map[string]interface{}{
		"id":                map[string]interface{}{"id": p.ID},
		"author_profile_id": p.AuthorProfileID,
		"author":            p.Author,
		"content":           p.Content,
		"created_ms":        strconv.FormatInt(int64(p.CreatedMs), 10),
		"updated_ms":        strconv.FormatInt(int64(p.UpdatedMs), 10),
	})
}

// CommentObject renders a comment as a raw object
func CommentObject(tags domain.TypeTags, c domain.Comment) objectstore.Object {
	return MoveObject(c.ID, tags.Tag(domain.KindComment), map[string]interface{}{
		"id":                map[string]interface{}{"id": c.ID},
		"post_id":           c.PostID,
		"author":            c.Author,
		"author_profile_id": c.AuthorProfileID,
		"content":           c.Content,
		"created_ms":        strconv.FormatInt(int64(c.CreatedMs), 10),
		"updated_ms":        strconv.FormatInt(int64(c.UpdatedMs), 10),
	})
}

// FollowTokenObject renders a follow token as a raw object
func FollowTokenObject(tags domain.TypeTags, t domain.FollowToken) objectstore.Object {
	return MoveObject(t.ID, tags.Tag(domain.KindFollowToken), map[string]interface{}{
		"id":                  map[string]interface{}{"id": t.ID},
		"follower":            t.Follower,
		"followed_profile_id": t.FollowedProfileID,
	})
}

// LikeTokenObject renders a like token as a raw object
func LikeTokenObject(tags domain.TypeTags, t domain.LikeToken) objectstore.Object {
	return MoveObject(t.ID, tags.Tag(domain.KindLikeToken), map[string]interface{}{
		"id":      map[string]interface{}{"id": t.ID},
		"liker":   t.Liker,
		"post_id": t.PostID,
	})
}

// ProfilesRegistryObject renders the profiles registry
func ProfilesRegistryObject(tags domain.TypeTags, id string, profiles []string, ownersTable string) objectstore.Object {
	return MoveObject(id, tags.Tag(domain.KindProfilesRegistry), map[string]interface{}{
		"id":       map[string]interface{}{"id": id},
		"profiles": nonNil(profiles),
		"owners":   TableRef(ownersTable),
	})
}

// FollowersRegistryObject renders the followers registry
func FollowersRegistryObject(tags domain.TypeTags, id, countsTable string) objectstore.Object {
	return MoveObject(id, tags.Tag(domain.KindFollowersRegistry), map[string]interface{}{
		"id":     map[string]interface{}{"id": id},
		"counts": TableRef(countsTable),
	})
}

// PostsRegistryObject renders the posts registry
func PostsRegistryObject(tags domain.TypeTags, id, postsOfTable string) objectstore.Object {
	return MoveObject(id, tags.Tag(domain.KindPostsRegistry), map[string]interface{}{
		"id":       map[string]interface{}{"id": id},
		"posts_of": TableRef(postsOfTable),
	})
}

// LikesRegistryObject renders the likes registry
func LikesRegistryObject(tags domain.TypeTags, id, countsTable string) objectstore.Object {
	return MoveObject(id, tags.Tag(domain.KindLikesRegistry), map[string]interface{}{
		"id":     map[string]interface{}{"id": id},
		"counts": TableRef(countsTable),
	})
}

// CommentsRegistryObject renders the comments registry
func CommentsRegistryObject(tags domain.TypeTags, id, commentsOfTable, countsTable string) objectstore.Object {
	return MoveObject(id, tags.Tag(domain.KindCommentsRegistry), map[string]interface{}{
		"id":          map[string]interface{}{"id": id},
		"comments_of": TableRef(commentsOfTable),
		"counts":      TableRef(countsTable),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
