// Package permissions implements the organization permission model
//
// A grant is an OrgPermissionMap from resource name to the actions allowed on
// it. Requirements use the same shape, and capabilities are named sets of
// alternative requirements. Every decision in the system flows through
// PermissionsSatisfy and SatisfiesAnyPermissionProfile
package permissions

import (
	"slices"

	"github.com/samber/lo"
)

// OrgPermissionMap maps a resource to the actions granted or required on it
type OrgPermissionMap map[string][]string

// PermissionsSatisfy reports whether granted covers every action in required
//
// Resources with an empty action list in required are vacuous. Resource names
// compare exactly; there are no wildcards or hierarchy. Nil maps act as empty
func PermissionsSatisfy(granted, required OrgPermissionMap) bool {
	for resource, actions := range required {
		if len(actions) == 0 {
			continue
		}
		have := granted[resource]
		for _, a := range actions {
			if !slices.Contains(have, a) {
				return false
			}
		}
	}
	return true
}

// SatisfiesAnyPermissionProfile reports whether granted satisfies at least one
// profile. An empty profile list places no requirement and returns true
func SatisfiesAnyPermissionProfile(granted OrgPermissionMap, profiles []OrgPermissionMap) bool {
	if len(profiles) == 0 {
		return true
	}
	return lo.SomeBy(profiles, func(p OrgPermissionMap) bool { return PermissionsSatisfy(granted, p) })
}

// Has reports whether m grants action on resource
func (m OrgPermissionMap) Has(resource, action string) bool {
	return slices.Contains(m[resource], action)
}

// Clone returns a deep copy
func (m OrgPermissionMap) Clone() OrgPermissionMap {
	if m == nil {
		return OrgPermissionMap{}
	}
	out := make(OrgPermissionMap, len(m))
	for r, a := range m {
		out[r] = slices.Clone(a)
	}
	return out
}

// Normalize returns a copy with actions deduplicated and sorted and empty resources dropped
func (m OrgPermissionMap) Normalize() OrgPermissionMap {
	out := make(OrgPermissionMap, len(m))
	for r, a := range m {
		if len(a) == 0 {
			continue
		}
		u := lo.Uniq(a)
		slices.Sort(u)
		out[r] = u
	}
	return out
}

// Merge returns the union of m and others
func (m OrgPermissionMap) Merge(others ...OrgPermissionMap) OrgPermissionMap {
	out := m.Clone()
	for _, o := range others {
		for r, a := range o {
			out[r] = append(out[r], a...)
		}
	}
	return out.Normalize()
}
