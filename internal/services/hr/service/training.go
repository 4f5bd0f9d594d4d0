package service

import (
	"context"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	ptime "orgcore/internal/platform/time"
	"orgcore/internal/services/hr/domain"

	"github.com/google/uuid"
)

func (s *Svc) insertTraining(ctx context.Context, a *authz.Context, t domain.TrainingRecord, action string) (domain.TrainingRecord, error) {
	if err := s.policy.BeforeWrite(a, a.OrgID(), a.Governance()); err != nil {
		return domain.TrainingRecord{}, err
	}
	now := s.now()
	t.ID = uuid.NewString()
	t.OrgID = a.OrgID()
	t.Governance = a.Governance()
	t.CreatedAt, t.UpdatedAt = now, now
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		if err := r.InsertTraining(ctx, t); err != nil {
			return err
		}
		return s.record(ctx, a, action, "training", t.ID, map[string]any{"userId": t.UserID, "course": t.Course})
	})
	if err != nil {
		return domain.TrainingRecord{}, err
	}
	return t, nil
}

// AssignTraining assigns a course to a user
func (s *Svc) AssignTraining(ctx context.Context, a *authz.Context, in domain.AssignTrainingInput) (domain.TrainingRecord, error) {
	if err := authz.AssertCapability(a, permissions.CanManageOrgTraining); err != nil {
		return domain.TrainingRecord{}, err
	}
	var due = in.DueOn
	if due != nil {
		due = ptime.Ptr(due.UTC())
	}
	return s.insertTraining(ctx, a, domain.TrainingRecord{
		UserID: in.UserID, Course: in.Course, Status: domain.TrainingAssigned, DueOn: due, AssignedBy: a.UserID(),
	}, "training.assign")
}

// RecordTrainingCompletion logs a finished course for the caller or, with manageOrgTraining, for anyone
func (s *Svc) RecordTrainingCompletion(ctx context.Context, a *authz.Context, in domain.TrainingCompletionInput) (domain.TrainingRecord, error) {
	if err := authz.AssertActorOrPrivileged(a, in.UserID, permissions.CanManageOrgTraining); err != nil {
		return domain.TrainingRecord{}, err
	}
	return s.insertTraining(ctx, a, domain.TrainingRecord{
		UserID: in.UserID, Course: in.Course, Status: domain.TrainingCompleted, CompletedAt: ptime.Ptr(in.CompletedAt.UTC()),
	}, "training.complete")
}

// ListTraining returns a user's records, or the org's with manageOrgTraining
func (s *Svc) ListTraining(ctx context.Context, a *authz.Context, userID string) ([]domain.TrainingRecord, error) {
	var err error
	if userID == "" {
		err = authz.AssertCapability(a, permissions.CanManageOrgTraining)
	} else {
		err = authz.AssertActorOrPrivileged(a, userID, permissions.CanManageOrgTraining)
	}
	if err != nil {
		return nil, err
	}
	var out []domain.TrainingRecord
	err = s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		ts, err := r.ListTraining(ctx, a.OrgID(), userID)
		if err != nil {
			return err
		}
		out, err = repokit.AfterReadAll(a, ts)
		return err
	})
	return out, err
}

// AcknowledgePolicy records that a user read a policy; repeating it keeps the first acknowledgment
func (s *Svc) AcknowledgePolicy(ctx context.Context, a *authz.Context, policyID string, in domain.AcknowledgePolicyInput) (domain.PolicyAck, error) {
	if err := authz.AssertActorOrPrivileged(a, in.UserID, permissions.CanManagePolicyAcknowledgments); err != nil {
		return domain.PolicyAck{}, err
	}
	if err := s.policy.BeforeWrite(a, a.OrgID(), a.Governance()); err != nil {
		return domain.PolicyAck{}, err
	}
	ack := domain.PolicyAck{
		OrgID:          a.OrgID(),
		PolicyID:       policyID,
		UserID:         in.UserID,
		RecordedBy:     a.UserID(),
		AcknowledgedAt: s.now(),
		Governance:     a.Governance(),
	}
	var out domain.PolicyAck
	err := s.tx(ctx, a, func(ctx context.Context, r domain.Repo) error {
		stored, err := r.UpsertAck(ctx, ack)
		if err != nil {
			return err
		}
		if out, err = repokit.AfterRead(a, stored); err != nil {
			return err
		}
		return s.record(ctx, a, "policy.acknowledge", "policy", policyID, map[string]any{"userId": in.UserID})
	})
	if err != nil {
		return domain.PolicyAck{}, err
	}
	return out, nil
}
