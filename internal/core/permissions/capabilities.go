package permissions

// Capability names a use case gate expressed as alternative permission profiles
type Capability string

// Capabilities checked by the services
const (
	CanManageOrgTraining           Capability = "manageOrgTraining"
	CanApproveOrgTimeEntries       Capability = "approveOrgTimeEntries"
	CanManageOrgAbsences           Capability = "manageOrgAbsences"
	CanManagePolicyAcknowledgments Capability = "managePolicyAcknowledgments"
	CanReadEmployeeProfiles        Capability = "readEmployeeProfiles"
	CanManageEmployeeProfiles      Capability = "manageEmployeeProfiles"
	CanManageDepartments           Capability = "manageDepartments"
	CanReadAuditLog                Capability = "readAuditLog"
	CanPurgeAuditLog               Capability = "purgeAuditLog"
	CanManageBillingPlans          Capability = "manageBillingPlans"
	CanReadBilling                 Capability = "readBilling"
)

func req(resource string, acts ...string) OrgPermissionMap {
	return OrgPermissionMap{resource: acts}
}

var orgUpdate = req(ResourceOrganization, ActionUpdate)

// capabilities is the whole policy table; adding a use case means adding a row here
var capabilities = map[Capability][]OrgPermissionMap{
	CanManageOrgTraining:           {orgUpdate, req(ResourceAudit, ActionWrite)},
	CanApproveOrgTimeEntries:       {orgUpdate, req(ResourceTimeEntry, ActionApprove)},
	CanManageOrgAbsences:           {orgUpdate, req(ResourceAbsence, ActionApprove)},
	CanManagePolicyAcknowledgments: {orgUpdate, req(ResourcePolicy, ActionUpdate)},
	CanReadEmployeeProfiles:        {req(ResourceEmployeeProfile, ActionRead)},
	CanManageEmployeeProfiles:      {req(ResourceEmployeeProfile, ActionUpdate)},
	CanManageDepartments:           {req(ResourceDepartment, ActionCreate, ActionUpdate), orgUpdate},
	CanReadAuditLog:                {req(ResourceAudit, ActionRead)},
	CanPurgeAuditLog:               {req(ResourceAudit, ActionDelete)},
	CanManageBillingPlans:          {req(ResourceBilling, ActionCreate, ActionUpdate)},
	CanReadBilling:                 {req(ResourceBilling, ActionRead), req(ResourceOrganization, ActionRead)},
}

// Profiles returns a copy of the profiles behind c; ok is false for unknown names
func Profiles(c Capability) ([]OrgPermissionMap, bool) {
	ps, ok := capabilities[c]
	if !ok {
		return nil, false
	}
	out := make([]OrgPermissionMap, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out, true
}

// Can reports whether granted holds capability c
// Unknown capabilities deny: an empty profile list would otherwise allow
func Can(granted OrgPermissionMap, c Capability) bool {
	ps, ok := capabilities[c]
	if !ok {
		return false
	}
	return SatisfiesAnyPermissionProfile(granted, ps)
}
