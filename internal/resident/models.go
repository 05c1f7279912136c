package resident

import (
	"time"

	id "warga/pkg/domain"
)

// LifecycleStatus tracks where a resident stands in the registry. Records are
// never deleted; death and relocation are status transitions so history stays
// intact.
type LifecycleStatus string

const (
	StatusActive    LifecycleStatus = "ACTIVE"
	StatusDeceased  LifecycleStatus = "DECEASED"
	StatusRelocated LifecycleStatus = "RELOCATED"
)

// FamilyRole labels a resident's position within their household.
type FamilyRole string

const (
	RoleHead          FamilyRole = "HEAD"
	RoleSpouse        FamilyRole = "SPOUSE"
	RoleChild         FamilyRole = "CHILD"
	RoleOtherRelative FamilyRole = "OTHER_RELATIVE"
)

// validRoles is the closed set accepted at registration and mutation time.
var validRoles = map[FamilyRole]bool{
	RoleHead:          true,
	RoleSpouse:        true,
	RoleChild:         true,
	RoleOtherRelative: true,
}

// ValidRole reports whether the role is one of the known family roles.
func ValidRole(role FamilyRole) bool {
	return validRoles[role]
}

// Resident is one tracked individual in the civil registry.
type Resident struct {
	ID          id.ResidentID
	NationalID  id.NationalID
	Name        string
	BirthPlace  string
	BirthDate   time.Time
	Role        FamilyRole
	Status      LifecycleStatus
	HouseholdID *id.HouseholdID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the resident is on the active roll.
func (r *Resident) IsActive() bool {
	return r.Status == StatusActive
}
