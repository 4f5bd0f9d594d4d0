// Package authztest builds authorization contexts for tests
package authztest

import (
	"testing"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
)

// UKOfficial is the default governance label of test contexts
var UKOfficial = governance.Tag{Residency: governance.ResidencyUKOnly, Classification: governance.ClassificationOfficial}

// Option adjusts the params of a test context
type Option func(*authz.Params)

// User sets the acting user
func User(id string) Option { return func(p *authz.Params) { p.UserID = id } }

// Role sets the role and its template permissions
func Role(r permissions.RoleKey) Option {
	return func(p *authz.Params) {
		p.RoleKey = r
		p.Permissions, _ = permissions.RoleTemplate(r)
	}
}

// Perms sets an explicit permission map
func Perms(m permissions.OrgPermissionMap) Option {
	return func(p *authz.Params) {
		p.RoleKey = permissions.RoleCustom
		p.Permissions = m
	}
}

// Tag sets the governance label
func Tag(t governance.Tag) Option { return func(p *authz.Params) { p.Governance = t } }

// Source sets the audit source
func Source(s string) Option { return func(p *authz.Params) { p.AuditSource = s } }

// New returns a verified context for org with the given options
// Without options the caller is an owner of org acting through the API
func New(t testing.TB, org string, opts ...Option) *authz.Context {
	t.Helper()
	owner, _ := permissions.RoleTemplate(permissions.RoleOwner)
	p := authz.Params{
		OrgID:         org,
		UserID:        "user-1",
		RoleKey:       permissions.RoleOwner,
		Permissions:   owner,
		Governance:    UKOfficial,
		AuditSource:   authz.SourceAPI,
		CorrelationID: "corr-1",
	}
	for _, o := range opts {
		o(&p)
	}
	a, err := authz.New(p)
	if err != nil {
		t.Fatalf("authztest: %v", err)
	}
	return a
}
