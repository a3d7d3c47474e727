// Package authz decides whether an identity may open a page. Decisions are
// pure: no I/O and no session changes.
package authz

import (
	"fmt"

	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
	"github.com/dmitrijs2005/fraudwatch/internal/client/session"
)

type Role = models.Role

const (
	RoleNone  = models.RoleNone
	RoleUser  = models.RoleUser
	RoleAdmin = models.RoleAdmin
)

type Kind int

const (
	Allow Kind = iota
	Redirect
	Denied
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Denied:
		return "denied"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Decision struct {
	Kind Kind
	// Target is the page to go to on Redirect.
	Target string
	// Current and Required are set on Denied.
	Current  Role
	Required Role
}

// Reason renders a Denied decision for display.
func (d Decision) Reason() string {
	if d.Kind != Denied {
		return ""
	}
	return fmt.Sprintf("your role is %q, this page requires %q", d.Current.String(), d.Required.String())
}

// Authorize decides access for identity to a page requiring required.
// RoleNone means any authenticated identity. An identity whose role is not
// a known role is denied whenever a role is required.
func Authorize(identity *session.Identity, required Role) Decision {
	if identity == nil {
		return Decision{Kind: Redirect, Target: LoginPath}
	}
	if required == RoleNone {
		return Decision{Kind: Allow}
	}
	if !identity.Role.Valid() || identity.Role != required {
		return Decision{Kind: Denied, Current: identity.Role, Required: required}
	}
	return Decision{Kind: Allow}
}
