package domain

import "time"

// UpdateProfileInput changes a profile; nil fields are left alone
// Email and Phone are the contact fields an employee may change on their own profile
type UpdateProfileInput struct {
	DisplayName  *string `json:"displayName" validate:"omitempty,min=1,max=200"`
	JobTitle     *string `json:"jobTitle" validate:"omitempty,max=200"`
	DepartmentID *string `json:"departmentId" validate:"omitempty,uuid"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,e164"`
}

// OnlyContact reports whether in touches nothing but contact fields
func (in UpdateProfileInput) OnlyContact() bool {
	return in.DisplayName == nil && in.JobTitle == nil && in.DepartmentID == nil
}

// RequestAbsenceInput asks for leave
type RequestAbsenceInput struct {
	UserID   string    `json:"userId" validate:"required"`
	Kind     string    `json:"kind" validate:"required,oneof=annual sick parental unpaid other"`
	StartsOn time.Time `json:"startsOn" validate:"required"`
	EndsOn   time.Time `json:"endsOn" validate:"required"`
	Reason   string    `json:"reason" validate:"max=500"`
}

// DecideAbsenceInput approves or rejects a request
type DecideAbsenceInput struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

// LogTimeInput records worked minutes
type LogTimeInput struct {
	UserID   string    `json:"userId" validate:"required"`
	WorkDate time.Time `json:"workDate" validate:"required"`
	Minutes  int       `json:"minutes" validate:"required,min=1,max=1440"`
	Note     string    `json:"note" validate:"max=500"`
}

// AssignTrainingInput assigns a course
type AssignTrainingInput struct {
	UserID string     `json:"userId" validate:"required"`
	Course string     `json:"course" validate:"required,max=200"`
	DueOn  *time.Time `json:"dueOn"`
}

// TrainingCompletionInput records a finished course
type TrainingCompletionInput struct {
	UserID      string    `json:"userId" validate:"required"`
	Course      string    `json:"course" validate:"required,max=200"`
	CompletedAt time.Time `json:"completedAt" validate:"required"`
}

// AcknowledgePolicyInput records a policy acknowledgment for a user
type AcknowledgePolicyInput struct {
	UserID string `json:"userId" validate:"required"`
}

// DepartmentInput names a department
type DepartmentInput struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}
