package domain

import "strings"

// TypeKind enumerates the on-chain struct types this client understands
type TypeKind string

const (
	KindProfilesRegistry  TypeKind = "Profiles"
	KindProfile           TypeKind = "Profile"
	KindPost              TypeKind = "Post"
	KindComment           TypeKind = "Comment"
	KindLikeToken         TypeKind = "LikeNFT"
	KindFollowToken       TypeKind = "FollowNFT"
	KindFollowersRegistry TypeKind = "FollowersRegistry"
	KindPostsRegistry     TypeKind = "PostsRegistry"
	KindLikesRegistry     TypeKind = "LikesRegistry"
	KindCommentsRegistry  TypeKind = "CommentsRegistry"
)

// SocialModule is the Move module holding every social struct
const SocialModule = "social"

// TypeTags resolves canonical type tags for one deployed package
type TypeTags struct {
	PackageID string
}

// NewTypeTags creates type tags for the given package id
func NewTypeTags(packageID string) TypeTags {
	return TypeTags{PackageID: strings.TrimSpace(packageID)}
}

// Tag returns the full type tag, e.g. 0xabc::social::Post
func (t TypeTags) Tag(kind TypeKind) string {
	return t.PackageID + t.suffix(kind)
}

// Target returns the fully-qualified entry function name, e.g. 0xabc::social::follow
func (t TypeTags) Target(function string) string {
	return t.PackageID + "::" + SocialModule + "::" + function
}

// Matches reports whether a raw type tag names kind.
// The module::struct suffix must match exactly; the package address is compared
// case-insensitively and is ignored when no package id is configured.
func (t TypeTags) Matches(typeTag string, kind TypeKind) bool {
	suffix := t.suffix(kind)
	if !strings.HasSuffix(typeTag, suffix) {
		return false
	}
	pkg := strings.TrimSuffix(typeTag, suffix)
	if strings.Contains(pkg, "::") || strings.Contains(pkg, "<") {
		return false
	}
	if t.PackageID == "" {
		return true
	}
	return SameID(pkg, t.PackageID)
}

// KindOf returns the kind named by a raw type tag
func (t TypeTags) KindOf(typeTag string) (TypeKind, bool) {
	for _, k := range AllKinds {
		if t.Matches(typeTag, k) {
			return k, true
		}
	}
	return "", false
}

func (t TypeTags) suffix(kind TypeKind) string {
	return "::" + SocialModule + "::" + string(kind)
}

// AllKinds lists every known kind
var AllKinds = []TypeKind{
	KindProfilesRegistry,
	KindProfile,
	KindPost,
	KindComment,
	KindLikeToken,
	KindFollowToken,
	KindFollowersRegistry,
	KindPostsRegistry,
	KindLikesRegistry,
	KindCommentsRegistry,
}
