package models

import "time"

const (
	RoleDonor     = "donor"
	RoleNGO       = "ngo"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// RoleAssignment is the authoritative role record for a user. Exactly one
// row per user; Approved stays false until an admin grants access.
type RoleAssignment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"userID" gorm:"not null;uniqueIndex"`
	User       User      `json:"-" gorm:"foreignKey:UserID"`
	Role       string    `json:"role" gorm:"type:varchar(20);not null;index"`
	Approved   bool      `json:"approved" gorm:"default:false"`
	ApprovedBy *uint     `json:"approvedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleDonor, RoleNGO, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// SelfServiceRole reports whether a role may be chosen at signup. Admins
// bypass the approval gate entirely, so admin accounts are provisioned by
// an existing admin, never through public registration.
func SelfServiceRole(role string) bool {
	return ValidRole(role) && role != RoleAdmin
}

// ResolveRole returns the effective role for a user. The assignment row
// wins; the signup snapshot on the user is a fallback for the window where
// the row has not been materialized yet. The second return reports whether
// the fallback path was taken so callers can log it.
func ResolveRole(user *User, assignment *RoleAssignment) (string, bool) {
	if assignment != nil && assignment.Role != "" {
		return assignment.Role, false
	}
	if user != nil && ValidRole(user.SignupRole) {
		return user.SignupRole, true
	}
	return "", false
}

// IsApproved reports whether a user clears the approval gate. Admins are
// always approved regardless of the stored flag.
func IsApproved(role string, approved bool) bool {
	if role == RoleAdmin {
		return true
	}
	return approved
}
