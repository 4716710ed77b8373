package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
)

// Precondition codes attached to workflow errors
const (
	CodeNotVolunteer         = "NOT_VOLUNTEER"
	CodeDuplicateApplication = "DUPLICATE_APPLICATION"
	CodeAlreadyDecided       = "APPLICATION_ALREADY_DECIDED"
	CodeNotApproved          = "APPLICATION_NOT_APPROVED"
	CodeNotAttended          = "NOT_ATTENDED"
	CodeNotParticipant       = "NOT_A_PARTICIPANT"
	CodeTargetNotParticipant = "TARGET_NOT_A_PARTICIPANT"
	CodeSelfFeedback         = "SELF_FEEDBACK"
	CodeOpportunityNotEnded  = "OPPORTUNITY_NOT_ENDED"
	CodeDuplicateFeedback    = "DUPLICATE_FEEDBACK"
	CodeInvalidDecision      = "INVALID_DECISION"
)

// Rating scale shared by both kinds of feedback
const (
	RatingMin = 1
	RatingMax = 5
)

// Decision is the organization's verdict on a pending application
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts approve/reject as well as the resulting status names
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", string(models.ApplicationApproved):
		return DecisionApprove, nil
	case "reject", string(models.ApplicationRejected):
		return DecisionReject, nil
	default:
		return "", &apperrors.CustomError{
			Err:     apperrors.ErrBadRequest,
			Message: fmt.Sprintf("decision must be approve or reject, got %q", s),
			Code:    CodeInvalidDecision,
		}
	}
}

// Status returns the application status the decision leads to
func (d Decision) Status() models.ApplicationStatus {
	if d == DecisionApprove {
		return models.ApplicationApproved
	}
	return models.ApplicationRejected
}

// NewApplication builds the pending application an authenticated volunteer submits.
// Uniqueness of (volunteer, opportunity) is enforced by the store.
func NewApplication(actor models.Actor, opportunityID int64, motivation string, now time.Time) (*models.Application, error) {
	if actor.Role != models.RoleVolunteer {
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "only volunteers can apply to opportunities",
			Code:    CodeNotVolunteer,
		}
	}
	return &models.Application{
		VolunteerID:   actor.ID,
		OpportunityID: opportunityID,
		Status:        models.ApplicationPending,
		Motivation:    strings.TrimSpace(motivation),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Decide moves a pending application to approved or rejected and records who
// decided and when. There is no path back to pending.
func Decide(app *models.Application, decision Decision, deciderID int64, now time.Time) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return &apperrors.CustomError{
			Err:     apperrors.ErrBadRequest,
			Message: fmt.Sprintf("decision must be approve or reject, got %q", decision),
			Code:    CodeInvalidDecision,
		}
	}
	if app.Status != models.ApplicationPending {
		return &apperrors.CustomError{
			Err:     apperrors.ErrConflict,
			Message: fmt.Sprintf("application has already been %s", app.Status),
			Code:    CodeAlreadyDecided,
		}
	}

	decidedAt := now
	approvedBy := deciderID
	app.Status = decision.Status()
	app.ApprovedBy = &approvedBy
	app.ApprovedAt = &decidedAt
	app.UpdatedAt = now
	return nil
}

// SetAttendance flips the attendance flag of an approved application. Setting
// the current value again is a no-op.
func SetAttendance(app *models.Application, attended bool, now time.Time) error {
	if app.Status != models.ApplicationApproved {
		return apperrors.NewInvalidStateError(CodeNotApproved,
			fmt.Sprintf("attendance can only be marked on approved applications (status is %s)", app.Status))
	}
	if app.HasAttended == attended {
		return nil
	}
	app.HasAttended = attended
	app.UpdatedAt = now
	return nil
}

// CheckParticipant verifies that app belongs to an approved volunteer who attended
func CheckParticipant(app *models.Application) error {
	if app == nil {
		return &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "you did not apply to this opportunity",
			Code:    CodeNotParticipant,
		}
	}
	if app.Status != models.ApplicationApproved {
		return &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "only approved volunteers can leave feedback",
			Code:    CodeNotApproved,
		}
	}
	if !app.HasAttended {
		return &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "only volunteers marked as attended can leave feedback",
			Code:    CodeNotAttended,
		}
	}
	return nil
}

// CheckOpportunityFeedback gates a volunteer's rating of an opportunity: the
// volunteer attended and the opportunity's derived status is archived.
func CheckOpportunityFeedback(app *models.Application, opp *models.Opportunity, now time.Time) error {
	if err := CheckParticipant(app); err != nil {
		return err
	}
	if !HasEnded(opp, now) {
		return apperrors.NewInvalidStateError(CodeOpportunityNotEnded,
			"feedback opens once the opportunity has ended")
	}
	return nil
}

// CheckVolunteerFeedback gates a rating of a fellow participant. Both sides must
// be attended participants of the same opportunity and nobody rates themselves.
func CheckVolunteerFeedback(raterApp, rateeApp *models.Application, raterID, rateeID int64, opp *models.Opportunity, now time.Time) error {
	if raterID == rateeID {
		return &apperrors.CustomError{
			Err:     apperrors.ErrBadRequest,
			Message: "you cannot rate yourself",
			Code:    CodeSelfFeedback,
		}
	}
	if err := CheckOpportunityFeedback(raterApp, opp, now); err != nil {
		return err
	}
	if rateeApp == nil || rateeApp.OpportunityID != opp.ID {
		return &apperrors.CustomError{
			Err:     apperrors.ErrResourceNotFound,
			Message: "the volunteer did not take part in this opportunity",
			Code:    CodeTargetNotParticipant,
		}
	}
	if !rateeApp.IsAttendedParticipant() {
		return &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "the volunteer was not an attending participant of this opportunity",
			Code:    CodeTargetNotParticipant,
		}
	}
	return nil
}

// ValidateRating checks the rating scale
func ValidateRating(rating int) error {
	if rating < RatingMin || rating > RatingMax {
		return apperrors.NewValidationError(map[string]string{
			"rating": fmt.Sprintf("Rating must be between %d and %d", RatingMin, RatingMax),
		})
	}
	return nil
}
