package authz

import (
	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/metrics"
)

// Operation distinguishes read and write compliance checks
type Operation string

// Operations
const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)

// Record is a tenant scoped, governance labelled entity
type Record interface {
	TenantID() string
	GovernanceTag() governance.Tag
}

// deny records the guard and returns the uniform denial
// The guard name goes to logs and metrics only
func deny(a *Context, guard string) error {
	metrics.AuthzDenials.WithLabelValues(guard).Inc()
	ev := logger.Named("authz").Debug().Str("guard", guard)
	if a != nil {
		ev = ev.Str("tenant_id", a.orgID).Str("user_id", a.userID).Str("correlation_id", a.correlationID)
	}
	ev.Msg("access denied")
	return perr.Denied(guard)
}

func verified(a *Context) error {
	if err := a.Verify(); err != nil {
		guard := "context_missing"
		if e, ok := perr.As(err); ok && e.Op() != "" {
			guard = e.Op()
		}
		return deny(a, guard)
	}
	return nil
}

// AssertTenantWrite requires the write target to belong to the context's org
func AssertTenantWrite(a *Context, targetOrgID string) error {
	if err := verified(a); err != nil {
		return err
	}
	if targetOrgID == "" || targetOrgID != a.orgID {
		return deny(a, "tenant_write")
	}
	return nil
}

// AssertCompliance requires an exact residency match and a clearance that
// dominates the data's classification, for reads and writes alike
func AssertCompliance(a *Context, op Operation, tag governance.Tag) error {
	if err := verified(a); err != nil {
		return err
	}
	if a.tag.Residency != tag.Residency || !a.tag.Residency.Valid() {
		return deny(a, "residency_"+string(op))
	}
	if !a.tag.Classification.Dominates(tag.Classification) {
		return deny(a, "classification_"+string(op))
	}
	return nil
}

// AssertTenantRecord requires rec to belong to the context's org
// A foreign record is reported as denied, never as missing
func AssertTenantRecord(a *Context, rec Record) error {
	if err := verified(a); err != nil {
		return err
	}
	if rec == nil || rec.TenantID() != a.orgID {
		return deny(a, "tenant_record")
	}
	return nil
}

// AssertLoaded maps a by id lookup that found nothing to the same denial a
// foreign record gets, so callers cannot probe other tenants for ids
// Errors other than not found pass through
func AssertLoaded(a *Context, err error) error {
	if err == nil || !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return err
	}
	if verr := verified(a); verr != nil {
		return verr
	}
	return deny(a, "tenant_record")
}

// AssertReadable runs the tenant record and read compliance checks
func AssertReadable(a *Context, rec Record) error {
	if err := AssertTenantRecord(a, rec); err != nil {
		return err
	}
	return AssertCompliance(a, OpRead, rec.GovernanceTag())
}

// AssertWritable runs the tenant write and write compliance checks
func AssertWritable(a *Context, orgID string, tag governance.Tag) error {
	if err := AssertTenantWrite(a, orgID); err != nil {
		return err
	}
	return AssertCompliance(a, OpWrite, tag)
}

// AssertPermissions requires the grant to satisfy required
func AssertPermissions(a *Context, required permissions.OrgPermissionMap) error {
	if err := verified(a); err != nil {
		return err
	}
	if !permissions.PermissionsSatisfy(a.perms, required) {
		return deny(a, "permissions")
	}
	return nil
}

// AssertCapability requires the grant to hold capability c
func AssertCapability(a *Context, c permissions.Capability) error {
	if err := verified(a); err != nil {
		return err
	}
	if !permissions.Can(a.perms, c) {
		return deny(a, "capability_"+string(c))
	}
	return nil
}

// AssertActorOrPrivileged lets users act on their own records and otherwise
// requires capability c
func AssertActorOrPrivileged(a *Context, targetUserID string, c permissions.Capability) error {
	if err := verified(a); err != nil {
		return err
	}
	if targetUserID != "" && targetUserID == a.userID {
		return nil
	}
	if !permissions.Can(a.perms, c) {
		return deny(a, "delegation_"+string(c))
	}
	return nil
}

// Can reports whether a holds c without raising
func Can(a *Context, c permissions.Capability) bool {
	return a.Verify() == nil && permissions.Can(a.perms, c)
}

// CanManageOrgTraining reports whether a may manage other members' training
func CanManageOrgTraining(a *Context) bool { return Can(a, permissions.CanManageOrgTraining) }

// CanApproveOrgTimeEntries reports whether a may approve or log time for others
func CanApproveOrgTimeEntries(a *Context) bool { return Can(a, permissions.CanApproveOrgTimeEntries) }

// CanManageOrgAbsences reports whether a may act on other members' absences
func CanManageOrgAbsences(a *Context) bool { return Can(a, permissions.CanManageOrgAbsences) }

// CanManagePolicyAcknowledgments reports whether a may acknowledge on behalf of others
func CanManagePolicyAcknowledgments(a *Context) bool {
	return Can(a, permissions.CanManagePolicyAcknowledgments)
}
