package mutation

import (
	"github.com/feral-file/ff-social/internal/domain"
)

// Builder builds the move calls of the social package
type Builder struct {
	tags       domain.TypeTags
	registries domain.RegistryIDs
}

// NewBuilder creates a builder for one deployment
func NewBuilder(tags domain.TypeTags, registries domain.RegistryIDs) *Builder {
	return &Builder{tags: tags, registries: registries}
}

func (b *Builder) call(function string, args ...domain.Argument) domain.MoveCall {
	return domain.MoveCall{Target: b.tags.Target(function), Arguments: args}
}

// PublishPost builds publish_post(posts registry, profile, content)
func (b *Builder) PublishPost(profileID, content string) domain.MoveCall {
	return b.call("publish_post",
		domain.ObjectArg(b.registries.Posts),
		domain.ObjectArg(profileID),
		domain.StringArg(content),
	)
}

// EditPost builds edit_post_entry(profile, post, content)
func (b *Builder) EditPost(profileID, postID, content string) domain.MoveCall {
	return b.call("edit_post_entry",
		domain.ObjectArg(profileID),
		domain.ObjectArg(postID),
		domain.StringArg(content),
	)
}

// DeletePost builds delete_post_entry(posts registry, profile, post)
func (b *Builder) DeletePost(profileID, postID string) domain.MoveCall {
	return b.call("delete_post_entry",
		domain.ObjectArg(b.registries.Posts),
		domain.ObjectArg(profileID),
		domain.ObjectArg(postID),
	)
}

// AddComment builds add_comment(comments registry, profile, post, content, clock)
func (b *Builder) AddComment(profileID, postID, content string) domain.MoveCall {
	return b.call("add_comment",
		domain.ObjectArg(b.registries.Comments),
		domain.ObjectArg(profileID),
		domain.ObjectArg(postID),
		domain.StringArg(content),
		domain.ObjectArg(domain.ClockObjectID),
	)
}

// Follow builds follow(followers registry, my profile, target profile address)
func (b *Builder) Follow(myProfileID, targetProfileID string) domain.MoveCall {
	return b.call("follow",
		domain.ObjectArg(b.registries.Followers),
		domain.ObjectArg(myProfileID),
		domain.AddressArg(targetProfileID),
	)
}

// Unfollow builds unfollow(followers registry, my profile, follow token)
func (b *Builder) Unfollow(myProfileID, followTokenID string) domain.MoveCall {
	return b.call("unfollow",
		domain.ObjectArg(b.registries.Followers),
		domain.ObjectArg(myProfileID),
		domain.ObjectArg(followTokenID),
	)
}

// Like builds like_post(likes registry, profile, post)
func (b *Builder) Like(profileID, postID string) domain.MoveCall {
	return b.call("like_post",
		domain.ObjectArg(b.registries.Likes),
		domain.ObjectArg(profileID),
		domain.ObjectArg(postID),
	)
}

// Unlike builds unlike_post(likes registry, profile, like token)
func (b *Builder) Unlike(profileID, likeTokenID string) domain.MoveCall {
	return b.call("unlike_post",
		domain.ObjectArg(b.registries.Likes),
		domain.ObjectArg(profileID),
		domain.ObjectArg(likeTokenID),
	)
}

// CreateProfile builds create_profile, or create_profile_with_avatar when an avatar URL is set
func (b *Builder) CreateProfile(username, description, avatarURL string) domain.MoveCall {
	if avatarURL == "" {
		return b.call("create_profile",
			domain.ObjectArg(b.registries.Profiles),
			domain.StringArg(username),
			domain.StringArg(description),
		)
	}
	return b.call("create_profile_with_avatar",
		domain.ObjectArg(b.registries.Profiles),
		domain.StringArg(username),
		domain.StringArg(description),
		domain.StringArg(avatarURL),
	)
}
