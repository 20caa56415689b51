package service

import (
	"github.com/noah-isme/council-portal-api/internal/models"
)

// Permissions is the capability set an actor holds for one resource.
type Permissions struct {
	View          bool `json:"view"`
	Mutate        bool `json:"mutate"`
	ViewStats     bool `json:"view_stats"`
	ManageContent bool `json:"manage_content"`
}

// Any reports whether at least one capability is granted.
func (p Permissions) Any() bool {
	return p.View || p.Mutate || p.ViewStats || p.ManageContent
}

// ResolvePermissions derives the capability set from the actor's grants for a
// resource owned by directionID (nil for untriaged appeals and for resources
// that do not belong to a direction).
//
// Board and staff grants are global regardless of their direction column.
// Lead and member grants only match an identical, non-null direction, so an
// appeal without a direction is reachable by global roles alone.
func ResolvePermissions(grants []models.RoleGrant, directionID *string) Permissions {
	var perms Permissions
	for _, grant := range grants {
		if grant.Role.Global() {
			return Permissions{View: true, Mutate: true, ViewStats: true, ManageContent: true}
		}
		if grant.DirectionID == nil || directionID == nil || *grant.DirectionID != *directionID {
			continue
		}
		switch grant.Role {
		case models.RoleLead:
			perms.View, perms.Mutate, perms.ViewStats = true, true, true
		case models.RoleMember:
			perms.View, perms.Mutate = true, true
		}
	}
	return perms
}

// HasGlobalGrant reports whether any grant is board or staff.
func HasGlobalGrant(grants []models.RoleGrant) bool {
	for _, grant := range grants {
		if grant.Role.Global() {
			return true
		}
	}
	return false
}

// AppealScope returns the directions whose appeals the actor may see. A nil
// slice means every direction; ok is false when the actor holds no grant that
// opens any appeal at all.
func AppealScope(grants []models.RoleGrant) (scope []string, ok bool) {
	if HasGlobalGrant(grants) {
		return nil, true
	}
	scope = scopedDirections(grants, models.RoleLead, models.RoleMember)
	return scope, len(scope) > 0
}

// StatsScope is AppealScope restricted to grants that carry the statistics
// capability.
func StatsScope(grants []models.RoleGrant) (scope []string, ok bool) {
	if HasGlobalGrant(grants) {
		return nil, true
	}
	scope = scopedDirections(grants, models.RoleLead)
	return scope, len(scope) > 0
}

// CanManageContent reports whether the grants allow editing content, roles and
// directions.
func CanManageContent(grants []models.RoleGrant) bool {
	return ResolvePermissions(grants, nil).ManageContent
}

func scopedDirections(grants []models.RoleGrant, roles ...models.UserRole) []string {
	seen := make(map[string]struct{}, len(grants))
	scope := make([]string, 0, len(grants))
	for _, grant := range grants {
		if grant.DirectionID == nil || !containsRole(roles, grant.Role) {
			continue
		}
		if _, dup := seen[*grant.DirectionID]; dup {
			continue
		}
		seen[*grant.DirectionID] = struct{}{}
		scope = append(scope, *grant.DirectionID)
	}
	return scope
}

func containsRole(roles []models.UserRole, role models.UserRole) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
