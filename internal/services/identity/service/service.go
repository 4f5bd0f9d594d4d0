// Package service builds authorization contexts and verifies bearer tokens
package service

import (
	"context"
	"strings"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/store"
	ptime "orgcore/internal/platform/time"
	"orgcore/internal/services/identity/domain"
)

// Svc implements domain.Builder
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[domain.Repo]
	clock  ptime.Clock
}

var _ domain.Builder = (*Svc)(nil)

// New constructs the identity service
func New(db repokit.TxRunner, binder repokit.Binder[domain.Repo], clock ptime.Clock) *Svc {
	if db == nil {
		panic("identity.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("identity.Service requires a non nil Repo binder")
	}
	return &Svc{db: db, binder: binder, clock: ptime.Or(clock)}
}

// Build loads the org and the caller's active membership and returns a fresh context
//
// Every reason the caller cannot act in the org reads as the same denial;
// only infrastructure failures come back as themselves
func (s *Svc) Build(ctx context.Context, id domain.Identity) (*authz.Context, error) {
	if strings.TrimSpace(id.UserID) == "" || strings.TrimSpace(id.OrgID) == "" {
		return nil, perr.Denied("identity_incomplete")
	}
	source := id.AuditSource
	if source == "" {
		source = authz.SourceAPI
	}

	var (
		org domain.Organization
		mem domain.Membership
	)
	err := store.RunInTenant(ctx, s.db, id.OrgID, func(ctx context.Context, q store.RowQuerier) error {
		r := s.binder.Bind(q)
		var err error
		if org, err = r.Organization(ctx, id.OrgID); err != nil {
			return err
		}
		mem, err = r.Membership(ctx, id.OrgID, id.UserID)
		return err
	})
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return nil, s.refuse(ctx, id, "identity_unknown")
	case err != nil:
		return nil, err
	}
	if org.Status != domain.StatusActive || mem.Status != domain.StatusActive {
		return nil, s.refuse(ctx, id, "identity_inactive")
	}

	perms, err := permissions.Grant(mem.RoleKey, mem.Permissions)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("tenant_id", id.OrgID).Str("user_id", id.UserID).Msg("membership grant unusable")
		return nil, s.refuse(ctx, id, "identity_grant")
	}

	a, err := authz.New(authz.Params{
		OrgID:         org.ID,
		UserID:        mem.UserID,
		RoleKey:       mem.RoleKey,
		Permissions:   perms,
		Governance:    org.Governance,
		AuditSource:   source,
		CorrelationID: id.CorrelationID,
		MFAVerified:   id.MFAVerified,
		IPAddress:     id.IP,
		UserAgent:     id.UserAgent,
		IssuedAt:      s.clock.Now(),
	})
	if err != nil {
		// an org row with a bad label is a data fault, not a caller fault
		logger.C(ctx).Error().Err(err).Str("tenant_id", id.OrgID).Msg("organization governance invalid")
		return nil, s.refuse(ctx, id, "identity_governance")
	}
	return a, nil
}

func (s *Svc) refuse(ctx context.Context, id domain.Identity, reason string) error {
	logger.C(ctx).Debug().Str("tenant_id", id.OrgID).Str("user_id", id.UserID).Str("reason", reason).Msg("context build refused")
	return perr.Denied(reason)
}
