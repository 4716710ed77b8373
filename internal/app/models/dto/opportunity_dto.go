package dto

import (
	"time"

	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/pkg/validation"
)

// OpportunityRequest is the create/update payload. Field rules are applied by
// the validation package so that the per-field endpoint gives the same answers.
type OpportunityRequest struct {
	validation.OpportunityForm
	OrganizationID int64 `json:"organizationId" example:"1"`
}

// OpportunityFilterRequest holds the listing query parameters
type OpportunityFilterRequest struct {
	OrganizationID *int64                  `form:"organizationId"`
	Mode           *models.OpportunityMode `form:"mode"`
	DateType       *models.DateType        `form:"dateType"`
	Status         *models.DerivedStatus   `form:"status"`
	City           *string                 `form:"city"`
	Search         *string                 `form:"search"`
	Page           int                     `form:"page,default=1" binding:"min=1"`
	PageSize       int                     `form:"pageSize,default=10" binding:"min=1,max=100"`
}

// OpportunityResponse is an opportunity with its derived status
type OpportunityResponse struct {
	ID             int64 `json:"id" example:"12"`
	OrganizationID int64 `json:"organizationId" example:"1"`
	CreatedBy      int64 `json:"createdBy" example:"3"`

	Title        string `json:"title" example:"Beach cleanup"`
	ShortSummary string `json:"shortSummary"`
	Description  string `json:"description"`

	Mode      models.OpportunityMode `json:"mode" example:"onsite" enums:"onsite,remote,hybrid"`
	DateType  models.DateType        `json:"dateType" example:"single_day" enums:"single_day,multi_day,ongoing"`
	StartDate *time.Time             `json:"startDate,omitempty"`
	EndDate   *time.Time             `json:"endDate,omitempty"`
	StartTime string                 `json:"startTime,omitempty" example:"09:00"`
	EndTime   string                 `json:"endTime,omitempty" example:"13:00"`

	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	OsrmLink string `json:"osrmLink,omitempty"`

	MaxVolunteers      int      `json:"maxVolunteers" example:"25"`
	ApprovedVolunteers int      `json:"approvedVolunteers" example:"7"`
	Skills             []string `json:"skills"`
	Causes             []string `json:"causes"`
	Languages          []string `json:"languages"`
	GenderPreference   string   `json:"genderPreference,omitempty"`

	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`

	Status       models.DerivedStatus `json:"status" example:"upcoming" enums:"upcoming,active,archived"`
	ManualStatus models.ManualStatus  `json:"manualStatus" example:"published" enums:"published,closed"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// NewOpportunityResponse builds the response for opp with an already derived status
func NewOpportunityResponse(opp *models.Opportunity, status models.DerivedStatus, approved int) OpportunityResponse {
	return OpportunityResponse{
		ID:                 opp.ID,
		OrganizationID:     opp.OrganizationID,
		CreatedBy:          opp.CreatedBy,
		Title:              opp.Title,
		ShortSummary:       opp.ShortSummary,
		Description:        opp.Description,
		Mode:               opp.Mode,
		DateType:           opp.DateType,
		StartDate:          opp.StartDate,
		EndDate:            opp.EndDate,
		StartTime:          opp.StartTime,
		EndTime:            opp.EndTime,
		Address:            opp.Address,
		City:               opp.City,
		State:              opp.State,
		Country:            opp.Country,
		OsrmLink:           opp.OsrmLink,
		MaxVolunteers:      opp.MaxVolunteers,
		ApprovedVolunteers: approved,
		Skills:             opp.Skills,
		Causes:             opp.Causes,
		Languages:          opp.Languages,
		GenderPreference:   opp.GenderPreference,
		ContactName:        opp.ContactName,
		ContactEmail:       opp.ContactEmail,
		ContactPhone:       opp.ContactPhone,
		Status:             status,
		ManualStatus:       opp.Status,
		CreatedAt:          opp.CreatedAt,
		UpdatedAt:          opp.UpdatedAt,
	}
}

// OpportunityListResponse represents a page of opportunities
type OpportunityListResponse struct {
	Opportunities []OpportunityResponse `json:"opportunities"`
	Pagination    PaginationInfo        `json:"pagination"`
}

// FieldValidationResponse is the verdict for a single form field
type FieldValidationResponse struct {
	Field string `json:"field" example:"title"`
	Valid bool   `json:"valid" example:"false"`
	Error string `json:"error,omitempty" example:"Title must be at least 3 characters"`
}

// FormValidationResponse is the aggregate verdict for a whole form
type FormValidationResponse struct {
	Valid  bool              `json:"valid" example:"false"`
	Errors map[string]string `json:"errors"`
}
