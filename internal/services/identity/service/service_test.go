package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store/storetest"
	ptime "orgcore/internal/platform/time"
	"orgcore/internal/services/identity/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	orgs    map[string]domain.Organization
	members map[[2]string]domain.Membership
	err     error
}

func (m *memRepo) Organization(_ context.Context, orgID string) (domain.Organization, error) {
	if m.err != nil {
		return domain.Organization{}, m.err
	}
	o, ok := m.orgs[orgID]
	if !ok {
		return o, perr.ErrNotFound
	}
	return o, nil
}

func (m *memRepo) Membership(_ context.Context, orgID, userID string) (domain.Membership, error) {
	mem, ok := m.members[[2]string{orgID, userID}]
	if !ok {
		return mem, perr.ErrNotFound
	}
	return mem, nil
}

var ukSecret = governance.Tag{Residency: governance.ResidencyUKOnly, Classification: governance.ClassificationSecret}

func fixture() *memRepo {
	return &memRepo{
		orgs: map[string]domain.Organization{
			"org-a": {ID: "org-a", Name: "A", Governance: ukSecret, Status: domain.StatusActive},
			"org-x": {ID: "org-x", Name: "X", Governance: ukSecret, Status: "SUSPENDED"},
		},
		members: map[[2]string]domain.Membership{
			{"org-a", "u-admin"}:  {OrgID: "org-a", UserID: "u-admin", RoleKey: permissions.RoleAdmin, Status: domain.StatusActive},
			{"org-a", "u-custom"}: {OrgID: "org-a", UserID: "u-custom", RoleKey: permissions.RoleCustom, Permissions: permissions.OrgPermissionMap{permissions.ResourceAbsence: {permissions.ActionRead}}, Status: domain.StatusActive},
			{"org-a", "u-left"}:   {OrgID: "org-a", UserID: "u-left", RoleKey: permissions.RoleMember, Status: "REMOVED"},
			{"org-a", "u-bad"}:    {OrgID: "org-a", UserID: "u-bad", RoleKey: permissions.RoleCustom, Permissions: permissions.OrgPermissionMap{"payroll": {"read"}}, Status: domain.StatusActive},
			{"org-x", "u-admin"}:  {OrgID: "org-x", UserID: "u-admin", RoleKey: permissions.RoleAdmin, Status: domain.StatusActive},
		},
	}
}

func newSvc(r *memRepo) (*Svc, *storetest.Tx) {
	tx := &storetest.Tx{}
	clk := ptime.NewFixed(time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC))
	return New(tx, repokit.BindFunc[domain.Repo](func(repokit.Queryer) domain.Repo { return r }), clk), tx
}

func TestBuildTemplateRole(t *testing.T) {
	s, tx := newSvc(fixture())
	a, err := s.Build(context.Background(), domain.Identity{UserID: "u-admin", OrgID: "org-a", CorrelationID: "req-7", MFAVerified: true, IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "org-a", a.OrgID())
	assert.Equal(t, permissions.RoleAdmin, a.RoleKey())
	assert.Equal(t, ukSecret, a.Governance())
	assert.Equal(t, authz.SourceAPI, a.AuditSource())
	assert.Equal(t, "req-7", a.CorrelationID())
	assert.True(t, a.MFAVerified())
	assert.NoError(t, a.Verify())
	tmpl, _ := permissions.RoleTemplate(permissions.RoleAdmin)
	assert.Equal(t, tmpl, a.Permissions())
	assert.Equal(t, []string{"org-a"}, tx.Tenants)
}

func TestBuildCustomRoleUsesStoredMap(t *testing.T) {
	s, _ := newSvc(fixture())
	a, err := s.Build(context.Background(), domain.Identity{UserID: "u-custom", OrgID: "org-a", AuditSource: authz.SourceCLI})
	require.NoError(t, err)
	assert.Equal(t, permissions.OrgPermissionMap{permissions.ResourceAbsence: {permissions.ActionRead}}, a.Permissions())
	assert.Equal(t, authz.SourceCLI, a.AuditSource())
}

func TestBuildRefusalsAreUniform(t *testing.T) {
	s, _ := newSvc(fixture())
	cases := map[string]domain.Identity{
		"unknown org":      {UserID: "u-admin", OrgID: "org-b"},
		"not a member":     {UserID: "u-stranger", OrgID: "org-a"},
		"inactive member":  {UserID: "u-left", OrgID: "org-a"},
		"suspended org":    {UserID: "u-admin", OrgID: "org-x"},
		"corrupt grant":    {UserID: "u-bad", OrgID: "org-a"},
		"missing identity": {OrgID: "org-a"},
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Build(context.Background(), id)
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))
			assert.Equal(t, "access denied", err.Error())
		})
	}
}

func TestBuildPropagatesInfraErrors(t *testing.T) {
	r := fixture()
	r.err = perr.Infra(errors.New("conn reset"), "load organization")
	s, _ := newSvc(r)
	_, err := s.Build(context.Background(), domain.Identity{UserID: "u-admin", OrgID: "org-a"})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
}
