package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fraudwatch/internal/client/authz"
	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
	"github.com/dmitrijs2005/fraudwatch/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email and password and creates the
// account. The service does not issue a token on sign-up, so the user is
// asked to log in afterwards unless one was returned.
//
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	identity, loggedIn, err := a.auth.Register(ctx, client.Registration{
		Username: username,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return err
	}

	if loggedIn {
		a.setPage(authz.DashboardPage)
		a.printf("Welcome %s!\n", identity.Name)
		return nil
	}
	a.println("Account created. You can now log in.")
	return nil
}

// Login prompts for credentials and the role to sign in as, then
// authenticates. On success the identity and token are persisted and the
// dashboard becomes the current page.
//
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	rawRole, err := GetOptional(a.reader, "Role (user/admin)", string(models.RoleUser), a.out)
	if err != nil {
		return err
	}
	role := models.Role(rawRole)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", rawRole)
	}

	identity, err := a.auth.Login(ctx, email, password, role)
	if err != nil {
		return err
	}

	a.setPage(authz.DashboardPage)
	if identity.Role == models.RoleAdmin {
		a.println("Welcome Administrator!")
	} else {
		a.println("Welcome User!")
	}
	return nil
}

// Logout forgets the session and discards the draft batch with its
// verdicts.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.editor.Clear()
	a.workflow = nil
	a.setPage(authz.LoginPage)
	a.println("Logged out.")
	return nil
}

// Whoami prints the local identity and, when reachable, the service's view
// of it.
func (a *App) Whoami(ctx context.Context) error {
	identity := a.session.CurrentIdentity()
	if identity == nil {
		a.println("Not logged in.")
		return nil
	}
	a.printf("%s <%s> role=%s id=%s\n", identity.Name, identity.Email, identity.Role.String(), identity.ID)

	remote, err := a.auth.Me(ctx)
	if err != nil {
		a.log.Debug(ctx, "whoami: service lookup failed", "err", err)
		a.printf("Service check failed: %s\n", client.Message(err))
		return nil
	}
	a.printf("Service confirms: %s <%s> role=%s\n", remote.Name, remote.Email, remote.Role.String())
	return nil
}

func (a *App) Health(ctx context.Context) error {
	h, err := a.auth.Ping(ctx)
	if err != nil {
		return err
	}
	a.printf("Service %s: %s\n", h.Status, h.Message)
	return nil
}
