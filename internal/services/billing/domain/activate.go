package domain

import (
	"slices"
	"time"

	ptime "orgcore/internal/platform/time"

	"github.com/samber/lo"
)

// Changes lists the assignments an activation step moved
type Changes struct {
	Activated []string `json:"activated"`
	Retired   []string `json:"retired"`
	// Historical is set when asOf predates the tenant's ACTIVE assignment.
	// The returned list is a view of the tenant at asOf and must not be stored
	Historical bool `json:"historical,omitempty"`
}

// Changed reports whether anything needs persisting
func (c Changes) Changed() bool {
	return !c.Historical && (len(c.Activated) > 0 || len(c.Retired) > 0)
}

func within(t, from time.Time, to *time.Time) bool { return ptime.Within(t, from, to) }

// supersedes orders due candidates: later effectiveFrom, then later updatedAt, then greater id
func supersedes(a, b Assignment) bool {
	if !a.EffectiveFrom.Equal(b.EffectiveFrom) {
		return a.EffectiveFrom.After(b.EffectiveFrom)
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

// ActivateDue applies the activation rule for tenantID at asOf and returns
// the full updated list. The input is not modified.
//
// Among the tenant's due, non retired assignments the newest becomes ACTIVE
// and every other one is RETIRED, closing open windows at asOf. Assignments
// not yet due, retired ones and other tenants' are returned unchanged. Changed
// entries get updatedAt = asOf.
//
// When an ACTIVE assignment of the tenant only starts after asOf, asOf lies
// before the latest stored transition. That assignment is viewed as pending
// and the result is marked Historical, so at most one ACTIVE assignment
// exists in the view and nothing is written back.
func ActivateDue(list []Assignment, tenantID string, asOf time.Time) ([]Assignment, Changes) {
	next := slices.Clone(list)
	var ch Changes

	for i, a := range next {
		if a.Tenant == tenantID && a.Status == AssignmentActive && a.EffectiveFrom.After(asOf) {
			next[i].Status = AssignmentPending
			ch.Historical = true
		}
	}

	due := lo.Filter(lo.Range(len(next)), func(i, _ int) bool {
		a := next[i]
		return a.Tenant == tenantID && a.Status != AssignmentRetired && !a.EffectiveFrom.After(asOf)
	})
	if len(due) == 0 {
		return next, ch
	}
	winner := lo.MaxBy(due, func(i, j int) bool { return supersedes(next[i], next[j]) })

	for _, i := range due {
		a := next[i]
		if i == winner {
			if a.Status == AssignmentActive {
				continue
			}
			a.Status = AssignmentActive
			ch.Activated = append(ch.Activated, a.ID)
		} else {
			a.Status = AssignmentRetired
			if a.EffectiveTo == nil {
				a.EffectiveTo = ptime.Ptr(asOf)
			}
			ch.Retired = append(ch.Retired, a.ID)
		}
		a.UpdatedAt = asOf
		next[i] = a
	}
	return next, ch
}
