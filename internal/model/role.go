package model

import (
	"sort"
	"strings"
)

// Role is the access level carried by a user record. The set of values
// coming back from the API is open: anything other than the constants below
// is an unknown role and matches no requirement.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleWarden  Role = "warden"
	RoleStudent Role = "student"
)

// Known reports whether r is one of the roles the portal understands.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleWarden, RoleStudent:
		return true
	}
	return false
}

// RoleSet is the set of roles allowed on a route. The empty set admits any
// authenticated user.
type RoleSet map[Role]struct{}

// Roles builds a RoleSet from the given roles.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether r is a member of the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Empty reports whether the set has no members.
func (s RoleSet) Empty() bool {
	return len(s) == 0
}

// List returns the members in sorted order.
func (s RoleSet) List() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, r := range s.List() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
