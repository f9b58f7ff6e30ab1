package domain

import (
	"regexp"
	"strings"
)

var objectIDRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// NormalizeID returns the canonical comparison form of an identifier
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// SameID reports whether two identifiers name the same account or object.
// Addresses and object ids are compared case-insensitively.
func SameID(a, b string) bool {
	return NormalizeID(a) == NormalizeID(b)
}

// IsObjectID reports whether s is a full-length hex object id
func IsObjectID(s string) bool {
	return objectIDRegex.MatchString(s)
}

// IsIdentifierShaped reports whether s looks like an address or object id
func IsIdentifierShaped(s string) bool {
	return strings.HasPrefix(s, "0x") && len(s) > 2
}

// UniqueIDs deduplicates ids case-insensitively, keeping the first occurrence and input order.
// Empty strings are dropped.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		k := NormalizeID(id)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ShortID abbreviates long identifiers for display, e.g. 0x1234…abcd
func ShortID(id string) string {
	if id == "" {
		return "?"
	}
	if len(id) <= 10 {
		return id
	}
	return id[:6] + "…" + id[len(id)-4:]
}
