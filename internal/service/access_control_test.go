package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/models"
)

func strPtr(v string) *string { return &v }

func grant(role models.UserRole, direction string) models.RoleGrant {
	g := models.RoleGrant{UserID: "user", Role: role}
	if direction != "" {
		g.DirectionID = strPtr(direction)
	}
	return g
}

func TestResolvePermissions(t *testing.T) {
	cases := []struct {
		name      string
		grants    []models.RoleGrant
		direction *string
		want      Permissions
	}{
		{
			name:      "board is global",
			grants:    []models.RoleGrant{grant(models.RoleBoard, "")},
			direction: strPtr("dir-x"),
			want:      Permissions{View: true, Mutate: true, ViewStats: true, ManageContent: true},
		},
		{
			name:   "staff sees untriaged appeals",
			grants: []models.RoleGrant{grant(models.RoleStaff, "")},
			want:   Permissions{View: true, Mutate: true, ViewStats: true, ManageContent: true},
		},
		{
			name:      "lead of matching direction",
			grants:    []models.RoleGrant{grant(models.RoleLead, "dir-x")},
			direction: strPtr("dir-x"),
			want:      Permissions{View: true, Mutate: true, ViewStats: true},
		},
		{
			name:      "member of matching direction",
			grants:    []models.RoleGrant{grant(models.RoleMember, "dir-x")},
			direction: strPtr("dir-x"),
			want:      Permissions{View: true, Mutate: true},
		},
		{
			name:      "member of another direction",
			grants:    []models.RoleGrant{grant(models.RoleMember, "dir-x")},
			direction: strPtr("dir-y"),
		},
		{
			name:   "lead cannot see untriaged appeals",
			grants: []models.RoleGrant{grant(models.RoleLead, "dir-x")},
		},
		{
			name:      "scoped role without direction grants nothing",
			grants:    []models.RoleGrant{grant(models.RoleLead, "")},
			direction: strPtr("dir-x"),
		},
		{
			name:      "no grants",
			direction: strPtr("dir-x"),
		},
		{
			name:      "mixed grants pick the matching one",
			grants:    []models.RoleGrant{grant(models.RoleMember, "dir-y"), grant(models.RoleLead, "dir-x")},
			direction: strPtr("dir-x"),
			want:      Permissions{View: true, Mutate: true, ViewStats: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolvePermissions(tc.grants, tc.direction))
		})
	}
}

func TestAppealScope(t *testing.T) {
	scope, ok := AppealScope([]models.RoleGrant{grant(models.RoleStaff, "")})
	require.True(t, ok)
	assert.Nil(t, scope)

	scope, ok = AppealScope([]models.RoleGrant{
		grant(models.RoleMember, "dir-x"),
		grant(models.RoleLead, "dir-y"),
		grant(models.RoleMember, "dir-x"),
	})
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"dir-x", "dir-y"}, scope)

	_, ok = AppealScope(nil)
	assert.False(t, ok)
}

func TestStatsScopeExcludesMembers(t *testing.T) {
	_, ok := StatsScope([]models.RoleGrant{grant(models.RoleMember, "dir-x")})
	assert.False(t, ok)

	scope, ok := StatsScope([]models.RoleGrant{grant(models.RoleMember, "dir-x"), grant(models.RoleLead, "dir-y")})
	require.True(t, ok)
	assert.Equal(t, []string{"dir-y"}, scope)
}

func TestCanManageContent(t *testing.T) {
	assert.True(t, CanManageContent([]models.RoleGrant{grant(models.RoleBoard, "")}))
	assert.False(t, CanManageContent([]models.RoleGrant{grant(models.RoleLead, "dir-x")}))
}
