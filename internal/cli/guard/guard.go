// Package guard decides whether a command body may run for the current
// session, the CLI counterpart of the web app's protected routes.
package guard

import (
	"github.com/freedevconnect/freedev/internal/cli/client"
	"github.com/freedevconnect/freedev/internal/cli/session"
)

// Decision is the outcome of a guard check
type Decision int

const (
	// Loading means the session is not settled yet; render nothing final
	Loading Decision = iota
	// Allowed permits the guarded content
	Allowed
	// DeniedUnauthenticated sends the user to login
	DeniedUnauthenticated
	// DeniedWrongRole sends the user back home
	DeniedWrongRole
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Allowed:
		return "allowed"
	case DeniedUnauthenticated:
		return "denied:unauthenticated"
	case DeniedWrongRole:
		return "denied:wrong-role"
	default:
		return "unknown"
	}
}

// Authenticated guards content that only requires a signed-in session
func Authenticated(snap session.Snapshot) Decision {
	if snap.Initializing() {
		return Loading
	}
	if !snap.IsAuthenticated() {
		return DeniedUnauthenticated
	}
	return Allowed
}

// ForRole guards content reserved for one role. The loading check is
// deliberately broad: initialization and user population are separate steps,
// and a denial must not flash in the window between them.
func ForRole(snap session.Snapshot, required client.Role) Decision {
	if snap.Initializing() || snap.User == nil || snap.User.Role == "" {
		return Loading
	}
	if !snap.IsAuthenticated() {
		return DeniedUnauthenticated
	}
	if snap.User.Role != required {
		return DeniedWrongRole
	}
	return Allowed
}
