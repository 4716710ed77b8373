package models

// RoleType defines the user role type
type RoleType string

const (
	RoleVolunteer    RoleType = "VOLUNTEER"
	RoleOrganization RoleType = "ORGANIZATION"
	RoleAdmin        RoleType = "ADMIN"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	return r == RoleVolunteer || r == RoleOrganization || r == RoleAdmin
}

// Actor is the resolved caller identity supplied by the authentication layer.
type Actor struct {
	ID   int64
	Role RoleType
}

// IsAdmin reports whether the actor is a platform administrator
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
