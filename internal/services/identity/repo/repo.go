// Package repo provides postgres bindings for organizations and memberships
package repo

import (
	"context"
	"encoding/json"

	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
	"orgcore/internal/modkit/repokit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/identity/domain"
)

type (
	// PG is a postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

var _ domain.Repo = (*queries)(nil)

// NewPG returns a postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

const (
	orgSQL = `
select id, name, data_residency, data_classification, status
from organizations
where id = $1`

	membershipSQL = `
select org_id, user_id, role_key, permissions, status
from org_memberships
where org_id = $1 and user_id = $2`
)

func (r *queries) Organization(ctx context.Context, orgID string) (domain.Organization, error) {
	o, err := store.One(ctx, r.q, func(row store.Row) (domain.Organization, error) {
		var (
			o          domain.Organization
			res, class string
		)
		if err := row.Scan(&o.ID, &o.Name, &res, &class, &o.Status); err != nil {
			return o, err
		}
		o.Governance = governance.Tag{Residency: governance.Residency(res), Classification: governance.Classification(class)}
		return o, nil
	}, orgSQL, orgID)
	return o, perr.FromPostgres(err, "load organization")
}

func (r *queries) Membership(ctx context.Context, orgID, userID string) (domain.Membership, error) {
	m, err := store.One(ctx, r.q, func(row store.Row) (domain.Membership, error) {
		var (
			m     domain.Membership
			role  string
			perms []byte
		)
		if err := row.Scan(&m.OrgID, &m.UserID, &role, &perms, &m.Status); err != nil {
			return m, err
		}
		m.RoleKey = permissions.RoleKey(role)
		if len(perms) > 0 {
			if err := json.Unmarshal(perms, &m.Permissions); err != nil {
				return m, perr.Wrap(err, perr.ErrorCodeJSON, "decode membership permissions")
			}
		}
		return m, nil
	}, membershipSQL, orgID, userID)
	return m, perr.FromPostgres(err, "load membership")
}
