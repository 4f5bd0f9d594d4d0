// Package domain holds the billing catalog, tenant assignments and the activation rule
package domain

import (
	"context"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/governance"
	"orgcore/internal/platform/docstore"
)

// Settings documents holding the catalog and the assignments
const (
	PlansDocument       = "platform-billing-plans"
	AssignmentsDocument = "platform-billing-plan-assignments"
)

// Cadence is the billing interval
type Cadence string

// Cadences
const (
	CadenceMonthly Cadence = "monthly"
	CadenceAnnual  Cadence = "annual"
)

// PlanStatus is the catalog lifecycle of a plan
type PlanStatus string

// Plan statuses
const (
	PlanDraft    PlanStatus = "DRAFT"
	PlanActive   PlanStatus = "ACTIVE"
	PlanRetired  PlanStatus = "RETIRED"
	PlanArchived PlanStatus = "ARCHIVED"
)

// AssignmentStatus is the lifecycle of a tenant assignment
type AssignmentStatus string

// Assignment statuses; RETIRED is terminal
const (
	AssignmentPending AssignmentStatus = "PENDING"
	AssignmentActive  AssignmentStatus = "ACTIVE"
	AssignmentRetired AssignmentStatus = "RETIRED"
)

// BillingPlan is a catalog entry owned by the org that administers it
type BillingPlan struct {
	ID            string     `json:"id"`
	OrgID         string     `json:"orgId"`
	StripePriceID string     `json:"stripePriceId"`
	Currency      string     `json:"currency"`
	AmountCents   int64      `json:"amountCents"`
	Cadence       Cadence    `json:"cadence"`
	Status        PlanStatus `json:"status"`
	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo"`
	governance.Tag
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TenantID implements authz.Record
func (p BillingPlan) TenantID() string { return p.OrgID }

// GovernanceTag implements authz.Record
func (p BillingPlan) GovernanceTag() governance.Tag { return p.Tag }

// Entitles reports whether the plan can back an entitlement at asOf
func (p BillingPlan) Entitles(asOf time.Time) bool {
	return p.Status == PlanActive && within(asOf, p.EffectiveFrom, p.EffectiveTo)
}

// Assignment binds a plan to a paying tenant
type Assignment struct {
	ID            string           `json:"id"`
	Tenant        string           `json:"tenantId"`
	PlanID        string           `json:"planId"`
	Status        AssignmentStatus `json:"status"`
	EffectiveFrom time.Time        `json:"effectiveFrom"`
	EffectiveTo   *time.Time       `json:"effectiveTo"`
	governance.Tag
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TenantID implements authz.Record
func (a Assignment) TenantID() string { return a.Tenant }

// GovernanceTag implements authz.Record
func (a Assignment) GovernanceTag() governance.Tag { return a.Tag }

// Resolution is a tenant's current entitlement
type Resolution struct {
	Assignment Assignment  `json:"assignment"`
	Plan       BillingPlan `json:"plan"`
}

// ResolveOptions override the resolution instant and the document store
type ResolveOptions struct {
	AsOf    *time.Time
	Storage docstore.Store
}

// CreatePlanInput is the catalog entry request
type CreatePlanInput struct {
	StripePriceID      string     `json:"stripePriceId" validate:"required,max=255"`
	Currency           string     `json:"currency" validate:"required,len=3,alpha"`
	AmountCents        int64      `json:"amountCents" validate:"gte=0"`
	Cadence            Cadence    `json:"cadence" validate:"required,oneof=monthly annual"`
	Status             PlanStatus `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE"`
	EffectiveFrom      time.Time  `json:"effectiveFrom" validate:"required"`
	EffectiveTo        *time.Time `json:"effectiveTo"`
	DataResidency      string     `json:"dataResidency" validate:"omitempty,residency"`
	DataClassification string     `json:"dataClassification" validate:"omitempty,classification"`
}

// UpdatePlanInput changes a plan's status or window; nil fields are left alone
type UpdatePlanInput struct {
	Status           *PlanStatus `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE RETIRED ARCHIVED"`
	EffectiveFrom    *time.Time  `json:"effectiveFrom"`
	EffectiveTo      *time.Time  `json:"effectiveTo"`
	ClearEffectiveTo bool        `json:"clearEffectiveTo"`
}

// AssignPlanInput creates a pending assignment
type AssignPlanInput struct {
	TenantID           string     `json:"tenantId" validate:"required"`
	PlanID             string     `json:"planId" validate:"required"`
	EffectiveFrom      time.Time  `json:"effectiveFrom" validate:"required"`
	EffectiveTo        *time.Time `json:"effectiveTo"`
	DataResidency      string     `json:"dataResidency" validate:"omitempty,residency"`
	DataClassification string     `json:"dataClassification" validate:"omitempty,classification"`
}

// AssignmentFilter narrows ListAssignments
type AssignmentFilter struct {
	TenantID string
	Status   AssignmentStatus
}

// Resolver is the sole read entrypoint for entitlements
type Resolver interface {
	ResolveTenantBillingPlan(ctx context.Context, a *authz.Context, opts ResolveOptions) (*Resolution, error)
}

// ServicePort is consumed by handlers and the admin CLI
type ServicePort interface {
	Resolver
	CreatePlan(ctx context.Context, a *authz.Context, in CreatePlanInput) (BillingPlan, error)
	UpdatePlan(ctx context.Context, a *authz.Context, id string, in UpdatePlanInput) (BillingPlan, error)
	ListPlans(ctx context.Context, a *authz.Context) ([]BillingPlan, error)
	AssignPlan(ctx context.Context, a *authz.Context, in AssignPlanInput) (Assignment, error)
	EndAssignment(ctx context.Context, a *authz.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, a *authz.Context, f AssignmentFilter) ([]Assignment, error)
}
