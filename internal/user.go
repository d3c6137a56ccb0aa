package internal

import (
	"fmt"
	"time"
)

// Role is the access level of a user.
type Role string

// Roles, highest privilege first.
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
	RoleViewer     Role = "VIEWER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Status is the lifecycle state of a user account.
type Status string

const (
	StatusActive              Status = "ACTIVE"
	StatusInactive            Status = "INACTIVE"
	StatusSuspended           Status = "SUSPENDED"
	StatusPendingVerification Status = "PENDING_VERIFICATION"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPendingVerification:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts s into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// User is the identity attached to a Context after token verification.
type User struct {
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	LockedUntil      *time.Time `json:"lockedUntil,omitempty"`
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName,omitempty"`
	LastName         string     `json:"lastName,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Role             Role       `json:"role"`
	Status           Status     `json:"status"`
	FailedLoginCount int        `json:"failedLoginCount"`
}

// HasRole reports whether the user satisfies the required role.
// Super admins satisfy every role.
func (u *User) HasRole(required Role) bool {
	if u == nil {
		return false
	}
	return u.Role == required || u.Role == RoleSuperAdmin
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u != nil && u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
