package dto

import (
	"time"

	"github.com/yigit/volunteerhub/internal/app/models"
)

// ApplyRequest is a volunteer's application to an opportunity
type ApplyRequest struct {
	Motivation string `json:"motivation" binding:"max=2000" example:"I have organised two cleanups before."`
}

// DecisionRequest approves or rejects a pending application
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required" example:"approve" enums:"approve,reject"`
}

// AttendanceRequest marks whether an approved volunteer attended
type AttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required" example:"true"`
}

// ApplicationFilterRequest narrows an opportunity's application list
type ApplicationFilterRequest struct {
	Status   *models.ApplicationStatus `form:"status"`
	Page     int                       `form:"page,default=1" binding:"min=1"`
	PageSize int                       `form:"pageSize,default=10" binding:"min=1,max=100"`
}

// VolunteerBasicResponse is the applicant as shown to the organization
type VolunteerBasicResponse struct {
	ID        int64   `json:"id" example:"7"`
	Email     string  `json:"email" example:"vera@example.org"`
	FirstName string  `json:"firstName" example:"Vera"`
	LastName  string  `json:"lastName" example:"Lind"`
	Phone     *string `json:"phone,omitempty"`
}

// ApplicationResponse represents an application
type ApplicationResponse struct {
	ID            int64                    `json:"id" example:"31"`
	OpportunityID int64                    `json:"opportunityId" example:"12"`
	VolunteerID   int64                    `json:"volunteerId" example:"7"`
	Status        models.ApplicationStatus `json:"status" example:"pending" enums:"pending,approved,rejected"`
	Motivation    string                   `json:"motivation,omitempty"`
	HasAttended   bool                     `json:"hasAttended" example:"false"`
	ApprovedBy    *int64                   `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time               `json:"approvedAt,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
	Volunteer     *VolunteerBasicResponse  `json:"volunteer,omitempty"`
}

// NewApplicationResponse converts a model into its response
func NewApplicationResponse(app *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:            app.ID,
		OpportunityID: app.OpportunityID,
		VolunteerID:   app.VolunteerID,
		Status:        app.Status,
		Motivation:    app.Motivation,
		HasAttended:   app.HasAttended,
		ApprovedBy:    app.ApprovedBy,
		ApprovedAt:    app.ApprovedAt,
		CreatedAt:     app.CreatedAt,
		UpdatedAt:     app.UpdatedAt,
	}
	if app.Volunteer != nil {
		resp.Volunteer = &VolunteerBasicResponse{
			ID:        app.Volunteer.ID,
			Email:     app.Volunteer.Email,
			FirstName: app.Volunteer.FirstName,
			LastName:  app.Volunteer.LastName,
			Phone:     app.Volunteer.Phone,
		}
	}
	return resp
}

// ApplicationListResponse represents a page of applications
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}
