package models

import "time"

// Role is the single privilege field on an Account. Every privilege check
// goes through pkg/authz; there is no parallel promotion pathway.
type Role string

const (
	RoleApplicant  Role = "applicant"
	RoleStaff      Role = "staff"
	RoleSuperStaff Role = "superStaff"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleApplicant || r == RoleStaff || r == RoleSuperStaff
}

// Account maps an identity (external subject id + email) to a role and
// profile. PasswordHash is only set for directly-authenticated accounts;
// accounts provisioned implicitly on first application submission have none.
type Account struct {
	ID           string `gorm:"primaryKey;size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	DisplayName  string `gorm:"size:255"`
	PasswordHash []byte `json:"-"`
	Role         Role   `gorm:"size:32;not null;default:applicant"`
}
