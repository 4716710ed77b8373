package models

import "time"

// MemberRole is a user's role inside one organization
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "OWNER"
	MemberRoleManager MemberRole = "MANAGER"
)

// Organization is an NGO that publishes opportunities
type Organization struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Email       string    `json:"email" db:"email"`
	Website     *string   `json:"website,omitempty" db:"website"`
	CreatedBy   int64     `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// OrganizationMember grants a user manage-access over an organization
type OrganizationMember struct {
	OrganizationID int64      `json:"organizationId" db:"organization_id"`
	UserID         int64      `json:"userId" db:"user_id"`
	Role           MemberRole `json:"role" db:"role"`
	JoinedAt       time.Time  `json:"joinedAt" db:"joined_at"`
}
