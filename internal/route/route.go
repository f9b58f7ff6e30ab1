// Package route encodes the navigation state of the client as a hash fragment.
package route

import (
	"strings"

	"github.com/feral-file/ff-social/internal/domain"
)

// Name is the kind of screen a route points at
type Name string

const (
	Home      Name = "home"
	Explore   Name = "explore"
	Following Name = "following"
	Me        Name = "me"
	Profile   Name = "profile"
	Post      Name = "post"
)

// Route is a parsed location; ID is set for Profile and Post only
type Route struct {
	Name Name
	ID   string
}

// Parse decodes a hash such as "#/profile/0x..". An empty hash is Home, a bare
// object id is that profile and anything unrecognized is Explore.
func Parse(hash string) Route {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(hash), "#"), "/"))
	if raw == "" {
		return Route{Name: Home}
	}

	first, second, _ := strings.Cut(raw, "/")
	switch Name(first) {
	case Home, Explore, Following, Me:
		return Route{Name: Name(first)}
	case Profile, Post:
		if domain.IsObjectID(second) {
			return Route{Name: Name(first), ID: second}
		}
	}

	if domain.IsObjectID(raw) {
		return Route{Name: Profile, ID: raw}
	}
	return Route{Name: Explore}
}

// Format encodes r as a hash fragment
func Format(r Route) string {
	switch r.Name {
	case Profile, Post:
		return "#/" + string(r.Name) + "/" + r.ID
	case Home, Explore, Following, Me:
		return "#/" + string(r.Name)
	}
	return "#/" + string(Home)
}

func (r Route) String() string {
	return Format(r)
}
