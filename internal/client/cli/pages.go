package cli

import (
	"github.com/dmitrijs2005/fraudwatch/internal/client/authz"
)

// enter navigates to p when the current identity may open it and reports
// whether it did. Otherwise it renders the redirect hint or the denied view.
func (a *App) enter(p authz.Page) bool {
	d := p.Check(a.session.CurrentIdentity())
	switch d.Kind {
	case authz.Redirect:
		a.setPage(authz.LoginPage)
		a.println("Please log in first (type 'login' or 'register').")
		return false
	case authz.Denied:
		a.printDenied(d)
		return false
	default:
		a.setPage(p)
		return true
	}
}

func (a *App) printDenied(d authz.Decision) {
	a.println("Access Denied")
	if d.Required == authz.RoleAdmin {
		a.println("You don't have permission to access this page. This feature is only available to administrators.")
	} else {
		a.println("You don't have permission to access this page.")
	}
	a.printf("Current role: %s\n", d.Current.String())
	a.printf("Required role: %s\n", d.Required.String())
}
