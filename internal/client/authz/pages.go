package authz

import (
	"github.com/dmitrijs2005/fraudwatch/internal/client/session"
)

const LoginPath = "/login"

// Page is a navigable view and the role it requires.
type Page struct {
	Name     string
	Path     string
	Required Role
	// Public pages need no identity at all.
	Public bool
}

var (
	LoginPage     = Page{Name: "login", Path: LoginPath, Public: true}
	DashboardPage = Page{Name: "dashboard", Path: "/"}
	DetectPage    = Page{Name: "detect", Path: "/detect"}
	AnalyticsPage = Page{Name: "analytics", Path: "/analytics"}
	TrainPage     = Page{Name: "train", Path: "/train", Required: RoleAdmin}
	UsersPage     = Page{Name: "users", Path: "/users", Required: RoleAdmin}
)

// Pages lists every page in navigation order.
var Pages = []Page{LoginPage, DashboardPage, DetectPage, AnalyticsPage, TrainPage, UsersPage}

// Lookup finds a page by path.
func Lookup(path string) (Page, bool) {
	for _, p := range Pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}

// Check authorizes identity for p.
func (p Page) Check(identity *session.Identity) Decision {
	if p.Public {
		return Decision{Kind: Allow}
	}
	return Authorize(identity, p.Required)
}

// Visible returns the pages identity may open, for navigation menus.
func Visible(identity *session.Identity) []Page {
	var out []Page
	for _, p := range Pages {
		if p.Check(identity).Kind == Allow {
			out = append(out, p)
		}
	}
	return out
}
