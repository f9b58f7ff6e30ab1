package mutation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-social/internal/domain"
)

func TestBuilder(t *testing.T) {
	reg := domain.RegistryIDs{Profiles: "0xprof", Followers: "0xfol", Posts: "0xpost", Likes: "0xlike", Comments: "0xcom"}
	b := NewBuilder(domain.NewTypeTags("0xpkg"), reg)

	tests := []struct {
		name   string
		call   domain.MoveCall
		target string
		args   []domain.Argument
	}{
		{
			name:   "publish",
			call:   b.PublishPost("0xme", "hi"),
			target: "0xpkg::social::publish_post",
			args:   []domain.Argument{domain.ObjectArg("0xpost"), domain.ObjectArg("0xme"), domain.StringArg("hi")},
		},
		{
			name:   "edit",
			call:   b.EditPost("0xme", "0xp", "v2"),
			target: "0xpkg::social::edit_post_entry",
			args:   []domain.Argument{domain.ObjectArg("0xme"), domain.ObjectArg("0xp"), domain.StringArg("v2")},
		},
		{
			name:   "delete",
			call:   b.DeletePost("0xme", "0xp"),
			target: "0xpkg::social::delete_post_entry",
			args:   []domain.Argument{domain.ObjectArg("0xpost"), domain.ObjectArg("0xme"), domain.ObjectArg("0xp")},
		},
		{
			name:   "comment carries the clock",
			call:   b.AddComment("0xme", "0xp", "nice"),
			target: "0xpkg::social::add_comment",
			args: []domain.Argument{
				domain.ObjectArg("0xcom"), domain.ObjectArg("0xme"), domain.ObjectArg("0xp"),
				domain.StringArg("nice"), domain.ObjectArg("0x6"),
			},
		},
		{
			name:   "follow passes the target as an address",
			call:   b.Follow("0xme", "0xthem"),
			target: "0xpkg::social::follow",
			args:   []domain.Argument{domain.ObjectArg("0xfol"), domain.ObjectArg("0xme"), domain.AddressArg("0xthem")},
		},
		{
			name:   "unfollow",
			call:   b.Unfollow("0xme", "0xtok"),
			target: "0xpkg::social::unfollow",
			args:   []domain.Argument{domain.ObjectArg("0xfol"), domain.ObjectArg("0xme"), domain.ObjectArg("0xtok")},
		},
		{
			name:   "like",
			call:   b.Like("0xme", "0xp"),
			target: "0xpkg::social::like_post",
			args:   []domain.Argument{domain.ObjectArg("0xlike"), domain.ObjectArg("0xme"), domain.ObjectArg("0xp")},
		},
		{
			name:   "unlike",
			call:   b.Unlike("0xme", "0xtok"),
			target: "0xpkg::social::unlike_post",
			args:   []domain.Argument{domain.ObjectArg("0xlike"), domain.ObjectArg("0xme"), domain.ObjectArg("0xtok")},
		},
		{
			name:   "create profile",
			call:   b.CreateProfile("bob", "hello", ""),
			target: "0xpkg::social::create_profile",
			args:   []domain.Argument{domain.ObjectArg("0xprof"), domain.StringArg("bob"), domain.StringArg("hello")},
		},
		{
			name:   "create profile with avatar",
			call:   b.CreateProfile("bob", "hello", "ipfs://cid"),
			target: "0xpkg::social::create_profile_with_avatar",
			args: []domain.Argument{
				domain.ObjectArg("0xprof"), domain.StringArg("bob"), domain.StringArg("hello"), domain.StringArg("ipfs://cid"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.target, tt.call.Target)
			assert.Equal(t, tt.args, tt.call.Arguments)
		})
	}
}
