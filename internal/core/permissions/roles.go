package permissions

import perr "orgcore/internal/platform/errors"

// RoleKey names a membership role
type RoleKey string

// Canonical roles; custom carries its grant in storage
const (
	RoleOwner   RoleKey = "owner"
	RoleAdmin   RoleKey = "admin"
	RoleHRAdmin RoleKey = "hrAdmin"
	RoleManager RoleKey = "manager"
	RoleMember  RoleKey = "member"
	RoleAuditor RoleKey = "auditor"
	RoleCustom  RoleKey = "custom"
)

var all = []string{ActionRead, ActionList, ActionCreate, ActionUpdate, ActionDelete, ActionApprove, ActionAcknowledge, ActionWrite}

var templates = map[RoleKey]OrgPermissionMap{
	RoleOwner: func() OrgPermissionMap {
		m := OrgPermissionMap{}
		for r := range resources {
			m[r] = all
		}
		return m
	}(),
	RoleAdmin: {
		ResourceOrganization:    {ActionRead, ActionUpdate},
		ResourceMember:          {ActionRead, ActionList, ActionCreate, ActionUpdate, ActionDelete},
		ResourceEmployeeProfile: {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourceAbsence:         {ActionRead, ActionList, ActionApprove},
		ResourceTimeEntry:       {ActionRead, ActionList, ActionApprove},
		ResourceTraining:        {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourcePolicy:          {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourceChecklist:       {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourceDepartment:      {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourceRole:            {ActionRead, ActionList},
		ResourceComplianceItem:  {ActionRead, ActionList, ActionUpdate},
		ResourceAudit:           {ActionRead, ActionWrite},
		ResourceBilling:         {ActionRead},
	},
	RoleHRAdmin: {
		ResourceOrganization:    {ActionRead},
		ResourceEmployeeProfile: {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourceAbsence:         {ActionRead, ActionList, ActionApprove},
		ResourceTimeEntry:       {ActionRead, ActionList, ActionApprove},
		ResourceTraining:        {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourcePolicy:          {ActionRead, ActionList, ActionUpdate},
		ResourceDepartment:      {ActionRead, ActionList, ActionCreate, ActionUpdate},
		ResourceAudit:           {ActionWrite},
	},
	RoleManager: {
		ResourceOrganization:    {ActionRead},
		ResourceEmployeeProfile: {ActionRead, ActionList},
		ResourceAbsence:         {ActionRead, ActionList, ActionApprove},
		ResourceTimeEntry:       {ActionRead, ActionList, ActionApprove},
		ResourceDepartment:      {ActionRead, ActionList},
	},
	RoleMember: {
		ResourceOrganization: {ActionRead},
		ResourcePolicy:       {ActionRead, ActionAcknowledge},
		ResourceDepartment:   {ActionRead, ActionList},
	},
	RoleAuditor: {
		ResourceOrganization: {ActionRead},
		ResourceAudit:        {ActionRead, ActionList},
		ResourceBilling:      {ActionRead},
	},
}

// ParseRole accepts a canonical role key
func ParseRole(s string) (RoleKey, error) {
	r := RoleKey(s)
	if r == RoleCustom {
		return r, nil
	}
	if _, ok := templates[r]; !ok {
		return "", perr.Validationf("roleKey", "unknown role %q", s)
	}
	return r, nil
}

// RoleTemplate returns a fresh copy of the canonical grant for role
// Custom and unknown roles have no template
func RoleTemplate(role RoleKey) (OrgPermissionMap, bool) {
	m, ok := templates[role]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// Grant resolves the effective permissions of a membership: the template for a
// canonical role, or the stored map for a custom role
func Grant(role RoleKey, stored OrgPermissionMap) (OrgPermissionMap, error) {
	if role == RoleCustom {
		if err := ValidateMap(stored); err != nil {
			return nil, err
		}
		return stored.Normalize(), nil
	}
	if m, ok := RoleTemplate(role); ok {
		return m, nil
	}
	return nil, perr.Validationf("roleKey", "unknown role %q", role)
}
