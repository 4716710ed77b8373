package models

import "time"

// OpportunityMode says where the volunteering happens
type OpportunityMode string

const (
	ModeOnsite OpportunityMode = "onsite"
	ModeRemote OpportunityMode = "remote"
	ModeHybrid OpportunityMode = "hybrid"
)

// IsValid reports whether m is a known mode
func (m OpportunityMode) IsValid() bool {
	return m == ModeOnsite || m == ModeRemote || m == ModeHybrid
}

// RequiresLocation is true for every mode except remote
func (m OpportunityMode) RequiresLocation() bool {
	return m == ModeOnsite || m == ModeHybrid
}

// DateType classifies how an opportunity is scheduled
type DateType string

const (
	DateTypeSingleDay DateType = "single_day"
	DateTypeMultiDay  DateType = "multi_day"
	DateTypeOngoing   DateType = "ongoing"
)

// IsValid reports whether d is a known date type
func (d DateType) IsValid() bool {
	return d == DateTypeSingleDay || d == DateTypeMultiDay || d == DateTypeOngoing
}

// ManualStatus is the persisted status. It is only used for manual closure and
// is never the same thing as the derived lifecycle status.
type ManualStatus string

const (
	ManualStatusPublished ManualStatus = "published"
	ManualStatusClosed    ManualStatus = "closed"
)

// DerivedStatus is the lifecycle state computed on every read
type DerivedStatus string

const (
	StatusUpcoming DerivedStatus = "upcoming"
	StatusActive   DerivedStatus = "active"
	StatusArchived DerivedStatus = "archived"
)

// IsValid reports whether s is a known derived status
func (s DerivedStatus) IsValid() bool {
	return s == StatusUpcoming || s == StatusActive || s == StatusArchived
}

// RemoteLocation fills the location columns of remote opportunities
const RemoteLocation = "Remote"

// Opportunity represents a volunteering engagement posted by an organization
type Opportunity struct {
	ID             int64 `json:"id" db:"id"`
	OrganizationID int64 `json:"organizationId" db:"organization_id"`
	CreatedBy      int64 `json:"createdBy" db:"created_by"`

	Title        string `json:"title" db:"title"`
	ShortSummary string `json:"shortSummary" db:"short_summary"`
	Description  string `json:"description" db:"description"`

	Mode      OpportunityMode `json:"mode" db:"mode"`
	DateType  DateType        `json:"dateType" db:"date_type"`
	StartDate *time.Time      `json:"startDate,omitempty" db:"start_date"`
	EndDate   *time.Time      `json:"endDate,omitempty" db:"end_date"`
	StartTime string          `json:"startTime,omitempty" db:"start_time"`
	EndTime   string          `json:"endTime,omitempty" db:"end_time"`

	Address  string `json:"address" db:"address"`
	City     string `json:"city" db:"city"`
	State    string `json:"state" db:"state"`
	Country  string `json:"country" db:"country"`
	OsrmLink string `json:"osrmLink,omitempty" db:"osrm_link"`

	MaxVolunteers    int      `json:"maxVolunteers" db:"max_volunteers"`
	Skills           []string `json:"skills" db:"skills"`
	Causes           []string `json:"causes" db:"causes"`
	Languages        []string `json:"languages" db:"languages"`
	GenderPreference string   `json:"genderPreference,omitempty" db:"gender_preference"`

	ContactName  string `json:"contactName" db:"contact_name"`
	ContactEmail string `json:"contactEmail" db:"contact_email"`
	ContactPhone string `json:"contactPhone" db:"contact_phone"`

	Status    ManualStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsClosed reports a manual closure
func (o *Opportunity) IsClosed() bool {
	return o.Status == ManualStatusClosed
}
