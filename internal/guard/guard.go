// Package guard decides whether a session may see a protected view.
package guard

import (
	"hostelportal/internal/model"
	"hostelportal/internal/session"
)

// Decision is the outcome of Decide.
type Decision int

const (
	// Wait means hydration has not finished; no decision can be made yet.
	Wait Decision = iota
	// Render means the view may be shown.
	Render
	// RedirectUnauthenticated sends the visitor to the public landing view.
	RedirectUnauthenticated
	// Deny means the user is logged in but lacks a required role.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectUnauthenticated:
		return "redirect_unauthenticated"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Decide gates a view behind authentication and, when required is non-empty,
// membership of the user's role in required. It is a pure function of its
// inputs.
func Decide(state session.State, required model.RoleSet) Decision {
	if state.Loading {
		return Wait
	}
	if !state.IsAuthenticated || state.User == nil {
		return RedirectUnauthenticated
	}
	if required.Empty() {
		return Render
	}
	if required.Has(state.User.Role) {
		return Render
	}
	return Deny
}
