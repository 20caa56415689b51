package models

import "time"

// UserRole represents a council role; scope depends on the role kind.
type UserRole string

const (
	RoleMember UserRole = "member"
	RoleLead   UserRole = "lead"
	RoleBoard  UserRole = "board"
	RoleStaff  UserRole = "staff"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleMember, RoleLead, RoleBoard, RoleStaff:
		return true
	default:
		return false
	}
}

// Global reports whether the role spans every direction.
func (r UserRole) Global() bool {
	return r == RoleBoard || r == RoleStaff
}

// RoleGrant is a (user, role, optional direction) tuple.
type RoleGrant struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Role        UserRole  `db:"role" json:"role"`
	DirectionID *string   `db:"direction_id" json:"direction_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Profile mirrors the identity provider's user record needed for delivery.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Principal is the authenticated actor of a back-office request with the
// grants loaded for that request.
type Principal struct {
	UserID string
	Email  string
	Grants []RoleGrant
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
