// Package scope implements the permission scope set attached to a token
// pair. Scopes are case-insensitive: everything is stored lower-cased and
// kept sorted so serialization is stable.
package scope

import (
	"slices"
	"strings"
)

// DefaultDelimiter separates scopes on the wire (RFC 6749 section 3.3).
const DefaultDelimiter = " "

// Set is an immutable, sorted set of lower-cased scopes. The zero value is
// the empty set.
type Set struct {
	items []string
}

// Parse splits s on delim, lower-cases every scope and drops empties and
// duplicates. An empty delim falls back to DefaultDelimiter.
func Parse(s, delim string) Set {
	if delim == "" {
		delim = DefaultDelimiter
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Set{}
	}

	parts := strings.Split(s, delim)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		items = append(items, p)
	}

	slices.Sort(items)
	return Set{items: slices.Compact(items)}
}

// FromSlice builds a Set from already-split scopes.
func FromSlice(scopes []string) Set {
	return Parse(strings.Join(scopes, DefaultDelimiter), DefaultDelimiter)
}

// Contains reports whether scope is in the set. An empty scope means
// "nothing requested" and always matches.
func (s Set) Contains(scope string) bool {
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		return true
	}
	_, found := slices.BinarySearch(s.items, scope)
	return found
}

// ContainsAll reports whether every scope of the delimited request is in
// the set. An empty request always matches.
func (s Set) ContainsAll(requested, delim string) bool {
	return Parse(requested, delim).SubsetOf(s)
}

// SubsetOf reports whether every scope of s is also in other.
func (s Set) SubsetOf(other Set) bool {
	for _, item := range s.items {
		if !other.Contains(item) {
			return false
		}
	}
	return true
}

// Serialize joins the sorted scopes with delim. The empty set serializes to
// the empty string.
func (s Set) Serialize(delim string) string {
	if delim == "" {
		delim = DefaultDelimiter
	}
	return strings.Join(s.items, delim)
}

// String serializes with DefaultDelimiter.
func (s Set) String() string { return s.Serialize(DefaultDelimiter) }

func (s Set) Len() int { return len(s.items) }

func (s Set) IsEmpty() bool { return len(s.items) == 0 }

// Slice returns a copy of the sorted scopes.
func (s Set) Slice() []string { return slices.Clone(s.items) }

// Equal reports whether both sets hold the same scopes.
func (s Set) Equal(other Set) bool { return slices.Equal(s.items, other.items) }
