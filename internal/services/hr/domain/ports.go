package domain

import (
	"context"

	"orgcore/internal/core/authz"
)

// Repo is the persistence surface for HR records
//
// By id lookups do not filter on org: a foreign row is returned and the read
// guard denies it, and a missing row is denied the same way. Lists filter on org
type Repo interface {
	Profile(ctx context.Context, id string) (Profile, error)
	ListProfiles(ctx context.Context, orgID string) ([]Profile, error)
	UpdateProfile(ctx context.Context, p Profile) error

	InsertAbsence(ctx context.Context, a Absence) error
	Absence(ctx context.Context, id string) (Absence, error)
	ListAbsences(ctx context.Context, orgID, userID string) ([]Absence, error)
	UpdateAbsence(ctx context.Context, a Absence) error

	InsertTimeEntry(ctx context.Context, t TimeEntry) error
	TimeEntry(ctx context.Context, id string) (TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, t TimeEntry) error

	InsertTraining(ctx context.Context, t TrainingRecord) error
	ListTraining(ctx context.Context, orgID, userID string) ([]TrainingRecord, error)

	// UpsertAck keeps the first acknowledgment and returns the stored row
	UpsertAck(ctx context.Context, a PolicyAck) (PolicyAck, error)

	ListDepartments(ctx context.Context, orgID string) ([]Department, error)
	Department(ctx context.Context, id string) (Department, error)
	InsertDepartment(ctx context.Context, d Department) error
	UpdateDepartment(ctx context.Context, d Department) error
}

// ServicePort is consumed by the HR handlers
type ServicePort interface {
	GetProfile(ctx context.Context, a *authz.Context, id string) (Profile, error)
	ListProfiles(ctx context.Context, a *authz.Context) ([]Profile, error)
	UpdateProfile(ctx context.Context, a *authz.Context, id string, in UpdateProfileInput) (Profile, error)

	RequestAbsence(ctx context.Context, a *authz.Context, in RequestAbsenceInput) (Absence, error)
	CancelAbsence(ctx context.Context, a *authz.Context, id string) (Absence, error)
	DecideAbsence(ctx context.Context, a *authz.Context, id string, in DecideAbsenceInput) (Absence, error)
	ListAbsences(ctx context.Context, a *authz.Context, userID string) ([]Absence, error)

	LogTime(ctx context.Context, a *authz.Context, in LogTimeInput) (TimeEntry, error)
	ApproveTimeEntry(ctx context.Context, a *authz.Context, id string) (TimeEntry, error)

	AssignTraining(ctx context.Context, a *authz.Context, in AssignTrainingInput) (TrainingRecord, error)
	RecordTrainingCompletion(ctx context.Context, a *authz.Context, in TrainingCompletionInput) (TrainingRecord, error)
	ListTraining(ctx context.Context, a *authz.Context, userID string) ([]TrainingRecord, error)

	AcknowledgePolicy(ctx context.Context, a *authz.Context, policyID string, in AcknowledgePolicyInput) (PolicyAck, error)

	ListDepartments(ctx context.Context, a *authz.Context) ([]Department, error)
	CreateDepartment(ctx context.Context, a *authz.Context, in DepartmentInput) (Department, error)
	RenameDepartment(ctx context.Context, a *authz.Context, id string, in DepartmentInput) (Department, error)
}
