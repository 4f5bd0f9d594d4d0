package permissions

import (
	"sort"

	perr "orgcore/internal/platform/errors"
)

// Resources known to the permission model
const (
	ResourceOrganization    = "organization"
	ResourceMember          = "member"
	ResourceEmployeeProfile = "employeeProfile"
	ResourceAbsence         = "absence"
	ResourceTimeEntry       = "timeEntry"
	ResourceTraining        = "training"
	ResourcePolicy          = "policy"
	ResourceChecklist       = "checklist"
	ResourceDepartment      = "department"
	ResourceRole            = "role"
	ResourceComplianceItem  = "complianceItem"
	ResourceAudit           = "audit"
	ResourceBilling         = "billing"
)

// Actions known to the permission model
const (
	ActionRead        = "read"
	ActionList        = "list"
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionApprove     = "approve"
	ActionAcknowledge = "acknowledge"
	ActionWrite       = "write"
)

var resources = map[string]struct{}{
	ResourceOrganization: {}, ResourceMember: {}, ResourceEmployeeProfile: {}, ResourceAbsence: {},
	ResourceTimeEntry: {}, ResourceTraining: {}, ResourcePolicy: {}, ResourceChecklist: {},
	ResourceDepartment: {}, ResourceRole: {}, ResourceComplianceItem: {}, ResourceAudit: {},
	ResourceBilling: {},
}

var actions = map[string]struct{}{
	ActionRead: {}, ActionList: {}, ActionCreate: {}, ActionUpdate: {}, ActionDelete: {},
	ActionApprove: {}, ActionAcknowledge: {}, ActionWrite: {},
}

// IsResource reports whether name is registered
func IsResource(name string) bool {
	_, ok := resources[name]
	return ok
}

// IsAction reports whether name is registered
func IsAction(name string) bool {
	_, ok := actions[name]
	return ok
}

// ValidateMap rejects resources or actions missing from the registries
// Used before a custom role grant is stored
func ValidateMap(m OrgPermissionMap) error {
	keys := make([]string, 0, len(m))
	for r := range m {
		keys = append(keys, r)
	}
	sort.Strings(keys)

	var issues []perr.FieldIssue
	for _, r := range keys {
		if !IsResource(r) {
			issues = append(issues, perr.FieldIssue{Field: "permissions." + r, Message: "unknown resource"})
			continue
		}
		for _, a := range m[r] {
			if !IsAction(a) {
				issues = append(issues, perr.FieldIssue{Field: "permissions." + r, Message: "unknown action " + a})
			}
		}
	}
	if len(issues) > 0 {
		return perr.Invalid(issues...)
	}
	return nil
}
