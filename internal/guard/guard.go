// Package guard decides whether a view may be shown for the current session.
//
// The decision is advisory: the remote API enforces authorization on its own.
// Guards only keep the client from rendering views it cannot use.
package guard

import (
	"fmt"

	"github.com/desertthunder/roamly/internal/session"
	"github.com/desertthunder/roamly/internal/shared"
)

// Requirement is the access level a view declares.
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	Admin
)

func (r Requirement) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "public"
	}
}

// Decision is the outcome of [Evaluate].
type Decision int

const (
	// Render shows the requested view.
	Render Decision = iota
	// Wait shows a loading placeholder; the session has not resolved yet.
	Wait
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "render"
	}
}

// SnapshotSource yields the current session state. *session.Store satisfies it.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// Evaluate applies req to snap.
//
// Precedence is fixed: a loading session always waits, a missing user goes
// to login, and a signed-in non-admin asking for an admin view goes home.
// Public views render even while loading.
func Evaluate(snap session.Snapshot, req Requirement) Decision {
	if req == Public {
		return Render
	}
	if snap.Loading {
		return Wait
	}
	if !session.IsAuthenticated(snap) {
		return RedirectLogin
	}
	if req == Admin && !session.IsAdmin(snap) {
		return RedirectHome
	}
	return Render
}

// Check is [Evaluate] for callers without navigation, such as CLI commands.
// Render maps to nil; every other decision maps to a sentinel error.
func Check(snap session.Snapshot, req Requirement) error {
	switch Evaluate(snap, req) {
	case Wait:
		return shared.ErrSessionLoading
	case RedirectLogin:
		return fmt.Errorf("%w: run `roamly auth login` first", shared.ErrNotAuthenticated)
	case RedirectHome:
		return shared.ErrForbidden
	default:
		return nil
	}
}
