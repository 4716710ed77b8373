package dto

import (
	"time"

	"github.com/yigit/volunteerhub/internal/app/models"
)

// OpportunityFeedbackRequest rates an opportunity the volunteer took part in
type OpportunityFeedbackRequest struct {
	Rating      int      `json:"rating" example:"5"`
	Comment     string   `json:"comment" example:"Well organised and friendly."`
	Testimonial string   `json:"testimonial"`
	ImageURLs   []string `json:"imageUrls"`
}

// VolunteerFeedbackRequest rates a fellow participant
type VolunteerFeedbackRequest struct {
	RateeID int64  `json:"rateeId" binding:"required,min=1" example:"9"`
	Rating  int    `json:"rating" example:"4"`
	Comment string `json:"comment"`
}

// OpportunityFeedbackResponse represents a stored opportunity rating
type OpportunityFeedbackResponse struct {
	ID            int64     `json:"id"`
	OpportunityID int64     `json:"opportunityId"`
	VolunteerID   int64     `json:"volunteerId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	Testimonial   string    `json:"testimonial,omitempty"`
	ImageURLs     []string  `json:"imageUrls,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewOpportunityFeedbackResponse converts a model into its response
func NewOpportunityFeedbackResponse(fb *models.OpportunityFeedback) OpportunityFeedbackResponse {
	return OpportunityFeedbackResponse{
		ID:            fb.ID,
		OpportunityID: fb.OpportunityID,
		VolunteerID:   fb.VolunteerID,
		Rating:        fb.Rating,
		Comment:       fb.Comment,
		Testimonial:   fb.Testimonial,
		ImageURLs:     fb.ImageURLs,
		CreatedAt:     fb.CreatedAt,
	}
}

// VolunteerFeedbackResponse represents a stored rating of a volunteer
type VolunteerFeedbackResponse struct {
	ID            int64     `json:"id"`
	OpportunityID int64     `json:"opportunityId"`
	RaterID       int64     `json:"raterId"`
	RateeID       int64     `json:"rateeId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewVolunteerFeedbackResponse converts a model into its response
func NewVolunteerFeedbackResponse(fb *models.VolunteerFeedback) VolunteerFeedbackResponse {
	return VolunteerFeedbackResponse{
		ID:            fb.ID,
		OpportunityID: fb.OpportunityID,
		RaterID:       fb.RaterID,
		RateeID:       fb.RateeID,
		Rating:        fb.Rating,
		Comment:       fb.Comment,
		CreatedAt:     fb.CreatedAt,
	}
}

// FeedbackSummaryResponse lists opportunity feedback with its average rating
type FeedbackSummaryResponse struct {
	OpportunityID int64                         `json:"opportunityId"`
	Count         int                           `json:"count" example:"4"`
	AverageRating float64                       `json:"averageRating" example:"4.25"`
	Feedback      []OpportunityFeedbackResponse `json:"feedback"`
}

// VolunteerRatingResponse lists the ratings a volunteer received
type VolunteerRatingResponse struct {
	VolunteerID   int64                       `json:"volunteerId"`
	Count         int                         `json:"count"`
	AverageRating float64                     `json:"averageRating"`
	Feedback      []VolunteerFeedbackResponse `json:"feedback"`
}
