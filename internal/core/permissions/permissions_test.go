package permissions

import (
	"testing"

	perr "orgcore/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsSatisfy(t *testing.T) {
	granted := OrgPermissionMap{
		ResourceOrganization:    {ActionRead, ActionUpdate},
		ResourceEmployeeProfile: {ActionRead},
	}
	cases := []struct {
		name     string
		granted  OrgPermissionMap
		required OrgPermissionMap
		want     bool
	}{
		{"empty requirement", granted, OrgPermissionMap{}, true},
		{"nil requirement", nil, nil, true},
		{"empty action list is vacuous", nil, OrgPermissionMap{ResourceAudit: {}}, true},
		{"exact match", granted, OrgPermissionMap{ResourceOrganization: {ActionUpdate}}, true},
		{"all actions held", granted, OrgPermissionMap{ResourceOrganization: {ActionRead, ActionUpdate}}, true},
		{"one action missing", granted, OrgPermissionMap{ResourceOrganization: {ActionUpdate, ActionDelete}}, false},
		{"missing resource", granted, OrgPermissionMap{ResourceAudit: {ActionRead}}, false},
		{"one resource of two missing", granted, OrgPermissionMap{
			ResourceEmployeeProfile: {ActionRead},
			ResourceAudit:           {ActionWrite},
		}, false},
		{"no wildcard", OrgPermissionMap{"*": {"*"}}, OrgPermissionMap{ResourceAudit: {ActionRead}}, false},
		{"empty grant", OrgPermissionMap{}, OrgPermissionMap{ResourceEmployeeProfile: {ActionRead}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, PermissionsSatisfy(c.granted, c.required))
		})
	}
}

func TestSatisfiesAnyPermissionProfile(t *testing.T) {
	auditor := OrgPermissionMap{ResourceAudit: {ActionWrite}}
	profiles := []OrgPermissionMap{
		{ResourceOrganization: {ActionUpdate}},
		{ResourceAudit: {ActionWrite}},
	}

	assert.True(t, SatisfiesAnyPermissionProfile(auditor, profiles))
	assert.True(t, SatisfiesAnyPermissionProfile(nil, nil), "no profiles means no extra requirement")
	assert.True(t, SatisfiesAnyPermissionProfile(OrgPermissionMap{}, []OrgPermissionMap{}))
	assert.False(t, SatisfiesAnyPermissionProfile(OrgPermissionMap{ResourceAudit: {ActionRead}}, profiles))
}

func TestCapabilities(t *testing.T) {
	orgUpdater := OrgPermissionMap{ResourceOrganization: {ActionUpdate}}
	auditWriter := OrgPermissionMap{ResourceAudit: {ActionWrite}}
	approver := OrgPermissionMap{ResourceTimeEntry: {ActionApprove}}

	assert.True(t, Can(orgUpdater, CanManageOrgTraining))
	assert.True(t, Can(auditWriter, CanManageOrgTraining))
	assert.False(t, Can(approver, CanManageOrgTraining))

	assert.True(t, Can(approver, CanApproveOrgTimeEntries))
	assert.True(t, Can(orgUpdater, CanApproveOrgTimeEntries))
	assert.False(t, Can(auditWriter, CanApproveOrgTimeEntries))

	assert.False(t, Can(OrgPermissionMap{ResourceDepartment: {ActionCreate}}, CanManageDepartments),
		"profile needs both create and update")
	assert.False(t, Can(orgUpdater, Capability("notRegistered")), "unknown capability denies")

	ps, ok := Profiles(CanManageOrgTraining)
	require.True(t, ok)
	ps[0][ResourceOrganization][0] = "tampered"
	assert.True(t, Can(orgUpdater, CanManageOrgTraining), "Profiles must hand out copies")
}

func TestRoleTemplatesAndGrant(t *testing.T) {
	owner, ok := RoleTemplate(RoleOwner)
	require.True(t, ok)
	for r := range resources {
		assert.True(t, owner.Has(r, ActionDelete), r)
	}

	member, _ := RoleTemplate(RoleMember)
	member[ResourceAudit] = []string{ActionRead}
	fresh, _ := RoleTemplate(RoleMember)
	assert.False(t, fresh.Has(ResourceAudit, ActionRead), "templates are copied")

	_, ok = RoleTemplate(RoleCustom)
	assert.False(t, ok)

	g, err := Grant(RoleCustom, OrgPermissionMap{ResourceAudit: {ActionRead, ActionRead}})
	require.NoError(t, err)
	assert.Equal(t, OrgPermissionMap{ResourceAudit: {ActionRead}}, g)

	_, err = Grant(RoleCustom, OrgPermissionMap{"payroll": {ActionRead}})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))

	_, err = Grant(RoleKey("superuser"), nil)
	assert.Error(t, err)

	r, err := ParseRole("hrAdmin")
	require.NoError(t, err)
	assert.Equal(t, RoleHRAdmin, r)
	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestValidateMap(t *testing.T) {
	require.NoError(t, ValidateMap(OrgPermissionMap{ResourceTraining: {ActionCreate}}))

	err := ValidateMap(OrgPermissionMap{
		ResourceTraining: {"teleport"},
		"payroll":        {ActionRead},
	})
	e, ok := perr.As(err)
	require.True(t, ok)
	assert.Len(t, e.Issues(), 2)
}

func TestMapHelpers(t *testing.T) {
	m := OrgPermissionMap{ResourceAudit: {ActionWrite, ActionRead, ActionWrite}, ResourceRole: {}}
	n := m.Normalize()
	assert.Equal(t, OrgPermissionMap{ResourceAudit: {ActionRead, ActionWrite}}, n)

	merged := OrgPermissionMap{ResourceAudit: {ActionRead}}.Merge(OrgPermissionMap{ResourceAudit: {ActionDelete}, ResourceRole: {ActionRead}})
	assert.Equal(t, OrgPermissionMap{ResourceAudit: {ActionDelete, ActionRead}, ResourceRole: {ActionRead}}, merged)

	var nilMap OrgPermissionMap
	assert.NotNil(t, nilMap.Clone())
	assert.False(t, nilMap.Has(ResourceAudit, ActionRead))
}
