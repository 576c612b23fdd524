package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freedevconnect/freedev/internal/cli/client"
	"github.com/freedevconnect/freedev/internal/cli/guard"
	"github.com/freedevconnect/freedev/internal/cli/session"
)

// App bundles the dependencies every command consumes. It is assembled once
// by the composition root; commands never reach for globals.
type App struct {
	Session *session.Store
	Client  *client.Client
	Log     zerolog.Logger
}

// requireAuth is the authenticated-only route guard. A denial tells the user
// how to sign in instead of rendering the page.
func (a *App) requireAuth() error {
	switch guard.Authenticated(a.Session.Snapshot()) {
	case guard.Allowed:
		return nil
	case guard.Loading:
		return fmt.Errorf("session is still initializing, try again")
	default:
		return fmt.Errorf("not signed in. Run 'freedev login' first")
	}
}

// requireRole is the role route guard
func (a *App) requireRole(required client.Role) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	switch guard.ForRole(a.Session.Snapshot(), required) {
	case guard.Allowed:
		return nil
	case guard.Loading:
		return fmt.Errorf("session is still initializing, try again")
	case guard.DeniedWrongRole:
		return fmt.Errorf("this command requires the %s role (you are signed in as %s)",
			required, a.Session.Snapshot().Role())
	default:
		return fmt.Errorf("not signed in. Run 'freedev login' first")
	}
}
