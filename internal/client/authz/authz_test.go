package authz

import (
	"testing"

	"github.com/dmitrijs2005/fraudwatch/internal/client/session"
	"github.com/stretchr/testify/assert"
)

func identity(role Role) *session.Identity {
	return &session.Identity{ID: "1", Name: "n", Email: "n@x", Role: role}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		identity *session.Identity
		required Role
		want     Decision
	}{
		{"anonymous, no requirement", nil, RoleNone, Decision{Kind: Redirect, Target: LoginPath}},
		{"anonymous, admin page", nil, RoleAdmin, Decision{Kind: Redirect, Target: LoginPath}},
		{"anonymous, user page", nil, RoleUser, Decision{Kind: Redirect, Target: LoginPath}},
		{"user, no requirement", identity(RoleUser), RoleNone, Decision{Kind: Allow}},
		{"admin, no requirement", identity(RoleAdmin), RoleNone, Decision{Kind: Allow}},
		{"admin, admin", identity(RoleAdmin), RoleAdmin, Decision{Kind: Allow}},
		{"user, user", identity(RoleUser), RoleUser, Decision{Kind: Allow}},
		{"user, admin", identity(RoleUser), RoleAdmin, Decision{Kind: Denied, Current: RoleUser, Required: RoleAdmin}},
		{"admin, user", identity(RoleAdmin), RoleUser, Decision{Kind: Denied, Current: RoleAdmin, Required: RoleUser}},
		{"unknown role, admin", identity("root"), RoleAdmin, Decision{Kind: Denied, Current: "root", Required: RoleAdmin}},
		{"unknown role equal to required", identity("root"), "root", Decision{Kind: Denied, Current: "root", Required: "root"}},
		{"empty role, user", identity(RoleNone), RoleUser, Decision{Kind: Denied, Current: RoleNone, Required: RoleUser}},
		{"unknown role, no requirement", identity("root"), RoleNone, Decision{Kind: Allow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.identity, tt.required))
		})
	}
}

func TestAuthorize_DoesNotMutateIdentity(t *testing.T) {
	id := identity(RoleUser)
	before := *id
	Authorize(id, RoleAdmin)
	assert.Equal(t, before, *id)
}

func TestAdminScenario(t *testing.T) {
	admin := identity(RoleAdmin)
	assert.Equal(t, Allow, TrainPage.Check(admin).Kind)
	assert.Equal(t, Allow, DashboardPage.Check(admin).Kind)

	user := identity(RoleUser)
	d := TrainPage.Check(user)
	assert.Equal(t, Denied, d.Kind)
	assert.Equal(t, RoleUser, d.Current)
	assert.Equal(t, RoleAdmin, d.Required)
	assert.Equal(t, `your role is "user", this page requires "admin"`, d.Reason())
}

func TestLoginPageIsPublic(t *testing.T) {
	assert.Equal(t, Allow, LoginPage.Check(nil).Kind)
	assert.Equal(t, Redirect, DetectPage.Check(nil).Kind)
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("/train")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, p.Required)

	_, ok = Lookup("/nope")
	assert.False(t, ok)
}

func TestVisible(t *testing.T) {
	names := func(ps []Page) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"login"}, names(Visible(nil)))
	assert.Equal(t, []string{"login", "dashboard", "detect", "analytics"}, names(Visible(identity(RoleUser))))
	assert.Equal(t, []string{"login", "dashboard", "detect", "analytics", "train", "users"}, names(Visible(identity(RoleAdmin))))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "denied", Denied.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
	assert.Empty(t, Decision{Kind: Allow}.Reason())
}
