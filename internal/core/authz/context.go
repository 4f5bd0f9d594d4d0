// Package authz carries the per-request authorization context and the guards
// every tenant scoped repository and service runs before touching data
package authz

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
	perr "orgcore/internal/platform/errors"
)

// Audit sources stamped on every write
const (
	SourceAPI  = "api"
	SourceCLI  = "cli"
	SourceCron = "cron"
)

// TenantScope is the snapshot of tenant identity and governance labels taken
// when the context is built. Guards compare it against the live fields
type TenantScope struct {
	OrgID              string                    `json:"orgId"`
	DataResidency      governance.Residency      `json:"dataResidency"`
	DataClassification governance.Classification `json:"dataClassification"`
	AuditSource        string                    `json:"auditSource"`
}

// Params are the inputs to New
type Params struct {
	OrgID         string
	UserID        string
	RoleKey       permissions.RoleKey
	Permissions   permissions.OrgPermissionMap
	Governance    governance.Tag
	AuditSource   string
	CorrelationID string
	MFAVerified   bool
	IPAddress     string
	UserAgent     string
	IssuedAt      time.Time
}

// Context is the immutable authorization context of one request or job
type Context struct {
	orgID         string
	userID        string
	role          permissions.RoleKey
	perms         permissions.OrgPermissionMap
	tag           governance.Tag
	auditSource   string
	scope         TenantScope
	correlationID string
	mfa           bool
	ip            string
	userAgent     string
	issuedAt      time.Time
}

// New validates p and returns a context with a fresh tenant scope snapshot
func New(p Params) (*Context, error) {
	var issues []perr.FieldIssue
	if strings.TrimSpace(p.OrgID) == "" {
		issues = append(issues, perr.FieldIssue{Field: "orgId", Message: "required"})
	}
	if strings.TrimSpace(p.UserID) == "" {
		issues = append(issues, perr.FieldIssue{Field: "userId", Message: "required"})
	}
	if strings.TrimSpace(p.AuditSource) == "" {
		issues = append(issues, perr.FieldIssue{Field: "auditSource", Message: "required"})
	}
	if len(issues) > 0 {
		return nil, perr.Invalid(issues...)
	}
	if err := p.Governance.Validate(); err != nil {
		return nil, err
	}
	issued := p.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	a := &Context{
		orgID:         p.OrgID,
		userID:        p.UserID,
		role:          p.RoleKey,
		perms:         p.Permissions.Clone(),
		tag:           p.Governance,
		auditSource:   p.AuditSource,
		correlationID: p.CorrelationID,
		mfa:           p.MFAVerified,
		ip:            p.IPAddress,
		userAgent:     p.UserAgent,
		issuedAt:      issued,
	}
	a.scope = a.snapshotScope()
	return a, nil
}

func (a *Context) snapshotScope() TenantScope {
	return TenantScope{
		OrgID:              a.orgID,
		DataResidency:      a.tag.Residency,
		DataClassification: a.tag.Classification,
		AuditSource:        a.auditSource,
	}
}

// Verify checks the tenant scope snapshot still agrees with the live fields
func (a *Context) Verify() error {
	if a == nil {
		return perr.Denied("context_missing")
	}
	if a.scope != a.snapshotScope() {
		return perr.Denied("tenant_scope_mismatch")
	}
	return nil
}

// WithOrg returns a new context acting on orgID under tag, for scheduled jobs
// and impersonation. The receiver is left untouched
func (a *Context) WithOrg(orgID string, tag governance.Tag) (*Context, error) {
	if err := a.Verify(); err != nil {
		return nil, err
	}
	p := a.params()
	p.OrgID = orgID
	p.Governance = tag
	return New(p)
}

func (a *Context) params() Params {
	return Params{
		OrgID: a.orgID, UserID: a.userID, RoleKey: a.role, Permissions: a.perms,
		Governance: a.tag, AuditSource: a.auditSource, CorrelationID: a.correlationID,
		MFAVerified: a.mfa, IPAddress: a.ip, UserAgent: a.userAgent, IssuedAt: a.issuedAt,
	}
}

// OrgID is the tenant the context acts on
func (a *Context) OrgID() string { return a.orgID }

// UserID is the acting user
func (a *Context) UserID() string { return a.userID }

// RoleKey is the acting user's membership role
func (a *Context) RoleKey() permissions.RoleKey { return a.role }

// Permissions returns a copy of the effective grant
func (a *Context) Permissions() permissions.OrgPermissionMap { return a.perms.Clone() }

// Governance is the residency and clearance of the context
func (a *Context) Governance() governance.Tag { return a.tag }

// DataResidency is the residency zone of the context
func (a *Context) DataResidency() governance.Residency { return a.tag.Residency }

// DataClassification is the clearance of the context
func (a *Context) DataClassification() governance.Classification { return a.tag.Classification }

// AuditSource labels where the action originated
func (a *Context) AuditSource() string { return a.auditSource }

// TenantScope returns the scope snapshot
func (a *Context) TenantScope() TenantScope { return a.scope }

// CorrelationID ties audit records and logs to the originating request
func (a *Context) CorrelationID() string { return a.correlationID }

// MFAVerified reports whether the session passed a second factor
func (a *Context) MFAVerified() bool { return a.mfa }

// IPAddress of the caller, if known
func (a *Context) IPAddress() string { return a.ip }

// UserAgent of the caller, if known
func (a *Context) UserAgent() string { return a.userAgent }

// IssuedAt is when the context was built
func (a *Context) IssuedAt() time.Time { return a.issuedAt }

// Snapshot is the serialized form handed to background jobs
type Snapshot struct {
	OrgID         string                       `json:"orgId"`
	UserID        string                       `json:"userId"`
	RoleKey       permissions.RoleKey          `json:"roleKey"`
	Permissions   permissions.OrgPermissionMap `json:"permissions"`
	Governance    governance.Tag               `json:"governance"`
	AuditSource   string                       `json:"auditSource"`
	TenantScope   TenantScope                  `json:"tenantScope"`
	CorrelationID string                       `json:"correlationId,omitempty"`
	MFAVerified   bool                         `json:"mfaVerified"`
	IPAddress     string                       `json:"ipAddress,omitempty"`
	UserAgent     string                       `json:"userAgent,omitempty"`
	IssuedAt      time.Time                    `json:"issuedAt"`
}

// Snapshot returns the serializable form of a
func (a *Context) Snapshot() Snapshot {
	p := a.params()
	return Snapshot{
		OrgID: p.OrgID, UserID: p.UserID, RoleKey: p.RoleKey, Permissions: p.Permissions.Clone(),
		Governance: p.Governance, AuditSource: p.AuditSource, TenantScope: a.scope,
		CorrelationID: p.CorrelationID, MFAVerified: p.MFAVerified, IPAddress: p.IPAddress,
		UserAgent: p.UserAgent, IssuedAt: p.IssuedAt,
	}
}

// Restore rebuilds a context from a snapshot, rejecting snapshots whose tenant
// scope disagrees with their fields
func Restore(s Snapshot) (*Context, error) {
	a, err := New(Params{
		OrgID: s.OrgID, UserID: s.UserID, RoleKey: s.RoleKey, Permissions: s.Permissions,
		Governance: s.Governance, AuditSource: s.AuditSource, CorrelationID: s.CorrelationID,
		MFAVerified: s.MFAVerified, IPAddress: s.IPAddress, UserAgent: s.UserAgent, IssuedAt: s.IssuedAt,
	})
	if err != nil {
		return nil, err
	}
	a.scope = s.TenantScope
	if err := a.Verify(); err != nil {
		return nil, err
	}
	return a, nil
}

// MarshalJSON encodes the snapshot
func (a *Context) MarshalJSON() ([]byte, error) { return json.Marshal(a.Snapshot()) }

type ctxKey struct{}

// Attach stores a on ctx. Attaching a different context to a ctx that already
// carries one is refused
func Attach(ctx context.Context, a *Context) (context.Context, error) {
	if err := a.Verify(); err != nil {
		return ctx, err
	}
	if prev, ok := ctx.Value(ctxKey{}).(*Context); ok && prev != a {
		return ctx, perr.Denied("context_reattach")
	}
	return context.WithValue(ctx, ctxKey{}, a), nil
}

// From returns the context attached to ctx
func From(ctx context.Context) (*Context, bool) {
	a, ok := ctx.Value(ctxKey{}).(*Context)
	return a, ok && a != nil
}

// MustFrom returns the attached context or an authorization failure
func MustFrom(ctx context.Context) (*Context, error) {
	if a, ok := From(ctx); ok {
		return a, nil
	}
	return nil, perr.Denied("context_missing")
}
