// Package domain holds the audit event model and ports
package domain

import (
	"context"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/governance"
)

// Event is one append only audit record
type Event struct {
	ID            string         `json:"id"`
	OrgID         string         `json:"orgId"`
	ActorUserID   string         `json:"actorUserId"`
	Action        string         `json:"action"`
	TargetType    string         `json:"targetType"`
	TargetID      string         `json:"targetId"`
	AuditSource   string         `json:"auditSource"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Governance    governance.Tag `json:"governance"`
	OccurredAt    time.Time      `json:"occurredAt"`
}

// TenantID implements authz.Record
func (e Event) TenantID() string { return e.OrgID }

// GovernanceTag implements authz.Record
func (e Event) GovernanceTag() governance.Tag { return e.Governance }

// Entry is what callers hand to Append; actor, org, source and labels come from the context
type Entry struct {
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

// Filter narrows List
type Filter struct {
	Action     string    `json:"action,omitempty"`
	TargetType string    `json:"targetType,omitempty"`
	TargetID   string    `json:"targetId,omitempty"`
	Since      time.Time `json:"since,omitempty"`
	Until      time.Time `json:"until,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// SweepInput is the retention request
type SweepInput struct {
	Before time.Time `json:"before" validate:"required"`
}

// SweepResult reports how many events a sweep retired
type SweepResult struct {
	Before  time.Time `json:"before"`
	Retired int64     `json:"retired"`
}

// Appender is the port other modules record their writes through
type Appender interface {
	Append(ctx context.Context, a *authz.Context, e Entry) (Event, error)
}

// ServicePort is consumed by handlers and the admin CLI
type ServicePort interface {
	Appender
	List(ctx context.Context, a *authz.Context, f Filter) ([]Event, error)
	Update(ctx context.Context, a *authz.Context, id string, e Entry) error
	Delete(ctx context.Context, a *authz.Context, id string) error
	SweepRetention(ctx context.Context, a *authz.Context, before time.Time) (SweepResult, error)
}
