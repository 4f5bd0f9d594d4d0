// Package domain defines organizations, memberships and the context builder port
package domain

import (
	"context"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
)

// StatusActive marks usable organizations and memberships
const StatusActive = "ACTIVE"

// Organization carries the tenant's governance label
type Organization struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Governance governance.Tag `json:"governance"`
	Status     string         `json:"status"`
}

// Membership binds a user to an org with a role
// Permissions is only meaningful for the custom role
type Membership struct {
	OrgID       string                       `json:"orgId"`
	UserID      string                       `json:"userId"`
	RoleKey     permissions.RoleKey          `json:"roleKey"`
	Permissions permissions.OrgPermissionMap `json:"permissions,omitempty"`
	Status      string                       `json:"status"`
}

// Identity is everything known about a caller before the org lookup
type Identity struct {
	UserID        string
	OrgID         string
	IP            string
	UserAgent     string
	CorrelationID string
	MFAVerified   bool
	AuditSource   string
}

// Repo loads the rows the builder needs
// Missing rows surface as perr not found errors
type Repo interface {
	Organization(ctx context.Context, orgID string) (Organization, error)
	Membership(ctx context.Context, orgID, userID string) (Membership, error)
}

// Builder turns an identity into a fresh authorization context
type Builder interface {
	Build(ctx context.Context, id Identity) (*authz.Context, error)
}
