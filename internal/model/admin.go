package model

import "time"

// Role is the admin account role. Super admins manage admin accounts and may
// hard-delete entities; regular admins run the day-to-day book of business.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
)

// Admin represents a back-office account.
// PasswordHash is a bcrypt hash and is never serialized.
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsSuperAdmin reports whether the account holds the elevated role.
func (a *Admin) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// AdminStats aggregates counts of regular admin accounts for the dashboard.
// Recent counts accounts created within the last 30 days.
type AdminStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Recent   int `json:"recent"`
}
