package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fraudwatch/internal/client/authz"
)

func (a *App) getStatus() string {
	s := ""
	if identity := a.session.CurrentIdentity(); identity != nil {
		s = fmt.Sprintf("%s/%s ", identity.Email, identity.Role.String())
	}
	s = s + a.currentPage().Path
	return fmt.Sprintf("(%s)", s)
}

// Root restores any saved session and runs the REPL on stdin until the user
// exits.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to the fraudwatch CLI (type 'help' for commands)")

	if a.auth.Restore(ctx) {
		identity := a.session.CurrentIdentity()
		a.setPage(authz.DashboardPage)
		a.printf("Resumed session for %s (%s)\n", identity.Email, identity.Role.String())
	} else {
		a.setPage(authz.LoginPage)
		a.println("Please log in (type 'login' or 'register').")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
