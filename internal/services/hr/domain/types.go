// Package domain holds the HR records and their ports
package domain

import (
	"time"

	"orgcore/internal/core/governance"
)

// Rate limited actions
const (
	ActionTimeEntryCreate  = "timeEntry.create"
	ActionTimeEntryApprove = "timeEntry.approve"
)

// Profile is an employee's record in one org
type Profile struct {
	ID           string         `json:"id"`
	OrgID        string         `json:"orgId"`
	UserID       string         `json:"userId"`
	DisplayName  string         `json:"displayName"`
	JobTitle     string         `json:"jobTitle,omitempty"`
	DepartmentID string         `json:"departmentId,omitempty"`
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Governance   governance.Tag `json:"governance"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// AbsenceStatus is the approval state of an absence
type AbsenceStatus string

// Absence states
const (
	AbsenceRequested AbsenceStatus = "REQUESTED"
	AbsenceApproved  AbsenceStatus = "APPROVED"
	AbsenceRejected  AbsenceStatus = "REJECTED"
	AbsenceCancelled AbsenceStatus = "CANCELLED"
)

// Absence is a leave request
type Absence struct {
	ID         string         `json:"id"`
	OrgID      string         `json:"orgId"`
	UserID     string         `json:"userId"`
	Kind       string         `json:"kind"`
	StartsOn   time.Time      `json:"startsOn"`
	EndsOn     time.Time      `json:"endsOn"`
	Reason     string         `json:"reason,omitempty"`
	Status     AbsenceStatus  `json:"status"`
	DecidedBy  string         `json:"decidedBy,omitempty"`
	Governance governance.Tag `json:"governance"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// TimeEntryStatus is the approval state of logged time
type TimeEntryStatus string

// Time entry states
const (
	TimeSubmitted TimeEntryStatus = "SUBMITTED"
	TimeApproved  TimeEntryStatus = "APPROVED"
)

// TimeEntry is logged work for one day
type TimeEntry struct {
	ID         string          `json:"id"`
	OrgID      string          `json:"orgId"`
	UserID     string          `json:"userId"`
	WorkDate   time.Time       `json:"workDate"`
	Minutes    int             `json:"minutes"`
	Note       string          `json:"note,omitempty"`
	Status     TimeEntryStatus `json:"status"`
	ApprovedBy string          `json:"approvedBy,omitempty"`
	Governance governance.Tag  `json:"governance"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// TrainingStatus is the state of a training record
type TrainingStatus string

// Training states
const (
	TrainingAssigned  TrainingStatus = "ASSIGNED"
	TrainingCompleted TrainingStatus = "COMPLETED"
)

// TrainingRecord tracks one course for one user
type TrainingRecord struct {
	ID          string         `json:"id"`
	OrgID       string         `json:"orgId"`
	UserID      string         `json:"userId"`
	Course      string         `json:"course"`
	Status      TrainingStatus `json:"status"`
	DueOn       *time.Time     `json:"dueOn,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	AssignedBy  string         `json:"assignedBy,omitempty"`
	Governance  governance.Tag `json:"governance"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// PolicyAck records that a user read a policy
type PolicyAck struct {
	OrgID          string         `json:"orgId"`
	PolicyID       string         `json:"policyId"`
	UserID         string         `json:"userId"`
	RecordedBy     string         `json:"recordedBy"`
	AcknowledgedAt time.Time      `json:"acknowledgedAt"`
	Governance     governance.Tag `json:"governance"`
}

// Department groups profiles
type Department struct {
	ID         string         `json:"id"`
	OrgID      string         `json:"orgId"`
	Name       string         `json:"name"`
	Governance governance.Tag `json:"governance"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// TenantID and GovernanceTag make every HR record an authz.Record

func (p Profile) TenantID() string                     { return p.OrgID }
func (p Profile) GovernanceTag() governance.Tag        { return p.Governance }
func (a Absence) TenantID() string                     { return a.OrgID }
func (a Absence) GovernanceTag() governance.Tag        { return a.Governance }
func (t TimeEntry) TenantID() string                   { return t.OrgID }
func (t TimeEntry) GovernanceTag() governance.Tag      { return t.Governance }
func (t TrainingRecord) TenantID() string              { return t.OrgID }
func (t TrainingRecord) GovernanceTag() governance.Tag { return t.Governance }
func (p PolicyAck) TenantID() string                   { return p.OrgID }
func (p PolicyAck) GovernanceTag() governance.Tag      { return p.Governance }
func (d Department) TenantID() string                  { return d.OrgID }
func (d Department) GovernanceTag() governance.Tag     { return d.Governance }
