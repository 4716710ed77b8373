package models

import "time"

// OpportunityFeedback is a participant's rating of an opportunity
type OpportunityFeedback struct {
	ID            int64     `json:"id" db:"id"`
	OpportunityID int64     `json:"opportunityId" db:"opportunity_id"`
	VolunteerID   int64     `json:"volunteerId" db:"volunteer_id"`
	Rating        int       `json:"rating" db:"rating"`
	Comment       string    `json:"comment,omitempty" db:"comment"`
	Testimonial   string    `json:"testimonial,omitempty" db:"testimonial"`
	ImageURLs     []string  `json:"imageUrls,omitempty" db:"image_urls"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// VolunteerFeedback is one participant's rating of a fellow participant
type VolunteerFeedback struct {
	ID            int64     `json:"id" db:"id"`
	OpportunityID int64     `json:"opportunityId" db:"opportunity_id"`
	RaterID       int64     `json:"raterId" db:"rater_id"`
	RateeID       int64     `json:"rateeId" db:"ratee_id"`
	Rating        int       `json:"rating" db:"rating"`
	Comment       string    `json:"comment,omitempty" db:"comment"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
