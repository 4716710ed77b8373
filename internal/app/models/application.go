package models

import "time"

// ApplicationStatus is the organization's decision on an application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// IsValid reports whether s is a known application status
func (s ApplicationStatus) IsValid() bool {
	return s == ApplicationPending || s == ApplicationApproved || s == ApplicationRejected
}

// Application is one volunteer's relationship to one opportunity
type Application struct {
	ID            int64             `json:"id" db:"id"`
	VolunteerID   int64             `json:"volunteerId" db:"volunteer_id"`
	OpportunityID int64             `json:"opportunityId" db:"opportunity_id"`
	Status        ApplicationStatus `json:"status" db:"status"`
	Motivation    string            `json:"motivation,omitempty" db:"motivation"`
	HasAttended   bool              `json:"hasAttended" db:"has_attended"`
	ApprovedBy    *int64            `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt    *time.Time        `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`

	// Related entities
	Volunteer *User `json:"volunteer,omitempty"`
}

// IsAttendedParticipant is true for approved applications marked attended
func (a *Application) IsAttendedParticipant() bool {
	return a.Status == ApplicationApproved && a.HasAttended
}
