package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/domain"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
)

func TestSubmitOpportunityFeedback(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(-2)
	env.seedApplication(volunteerAID, opp.ID, models.ApplicationApproved, true)

	resp, err := env.feedbackSvc.SubmitOpportunityFeedback(context.Background(), volunteerA, opp.ID, &dto.OpportunityFeedbackRequest{
		Rating:    5,
		Comment:   " Great morning ",
		ImageURLs: []string{"https://img.example.org/1.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Rating)
	assert.Equal(t, "Great morning", resp.Comment)
	assert.Equal(t, volunteerAID, resp.VolunteerID)

	_, err = env.feedbackSvc.SubmitOpportunityFeedback(context.Background(), volunteerA, opp.ID, &dto.OpportunityFeedbackRequest{Rating: 4})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, domain.CodeDuplicateFeedback, apperrors.CodeOf(err))
}

func TestSubmitOpportunityFeedback_Gates(t *testing.T) {
	tests := []struct {
		name        string
		startOffset int
		status      models.ApplicationStatus
		attended    bool
		noApp       bool
		kind        apperrors.Kind
		code        string
	}{
		{"opportunity not ended", 0, models.ApplicationApproved, true, false, apperrors.KindInvalidStateTransition, domain.CodeOpportunityNotEnded},
		{"never applied", -2, "", false, true, apperrors.KindForbidden, domain.CodeNotParticipant},
		{"rejected", -2, models.ApplicationRejected, false, false, apperrors.KindForbidden, domain.CodeNotApproved},
		{"approved but absent", -2, models.ApplicationApproved, false, false, apperrors.KindForbidden, domain.CodeNotAttended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			opp := env.seedOpportunity(tt.startOffset)
			if !tt.noApp {
				env.seedApplication(volunteerAID, opp.ID, tt.status, tt.attended)
			}

			_, err := env.feedbackSvc.SubmitOpportunityFeedback(context.Background(), volunteerA, opp.ID, &dto.OpportunityFeedbackRequest{Rating: 3})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
			assert.Empty(t, env.feedback.opportunity)
		})
	}
}

func TestSubmitOpportunityFeedback_ClosedOpportunityHasEnded(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(5)
	opp.Status = models.ManualStatusClosed
	env.opps.put(opp)
	env.seedApplication(volunteerAID, opp.ID, models.ApplicationApproved, true)

	_, err := env.feedbackSvc.SubmitOpportunityFeedback(context.Background(), volunteerA, opp.ID, &dto.OpportunityFeedbackRequest{Rating: 4})
	assert.NoError(t, err)
}

func TestSubmitOpportunityFeedback_InvalidContent(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(-2)
	env.seedApplication(volunteerAID, opp.ID, models.ApplicationApproved, true)

	_, err := env.feedbackSvc.SubmitOpportunityFeedback(context.Background(), volunteerA, opp.ID, &dto.OpportunityFeedbackRequest{
		Rating:    6,
		Comment:   strings.Repeat("x", MaxFeedbackCommentLength+1),
		ImageURLs: []string{"not a url"},
	})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "rating")
	assert.Contains(t, verr.Fields, "comment")
	assert.Contains(t, verr.Fields, "imageUrls")
}

func TestSubmitVolunteerFeedback(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(-2)
	env.seedApplication(volunteerAID, opp.ID, models.ApplicationApproved, true)
	env.seedApplication(volunteerBID, opp.ID, models.ApplicationApproved, true)
	env.seedApplication(volunteerCID, opp.ID, models.ApplicationApproved, false)

	resp, err := env.feedbackSvc.SubmitVolunteerFeedback(context.Background(), volunteerA, opp.ID, &dto.VolunteerFeedbackRequest{RateeID: volunteerBID, Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, volunteerAID, resp.RaterID)
	assert.Equal(t, volunteerBID, resp.RateeID)

	tests := []struct {
		name    string
		rater   models.Actor
		rateeID int64
		kind    apperrors.Kind
		code    string
	}{
		{"duplicate", volunteerA, volunteerBID, apperrors.KindConflict, domain.CodeDuplicateFeedback},
		{"self", volunteerA, volunteerAID, apperrors.KindValidationFailed, domain.CodeSelfFeedback},
		{"ratee absent", volunteerA, volunteerCID, apperrors.KindForbidden, domain.CodeTargetNotParticipant},
		{"ratee never applied", volunteerA, 555, apperrors.KindNotFound, domain.CodeTargetNotParticipant},
		{"rater absent", volunteerC, volunteerAID, apperrors.KindForbidden, domain.CodeNotAttended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.feedbackSvc.SubmitVolunteerFeedback(context.Background(), tt.rater, opp.ID, &dto.VolunteerFeedbackRequest{RateeID: tt.rateeID, Rating: 3})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
	assert.Len(t, env.feedback.volunteer, 1)
}

func TestListFeedback_Averages(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(-2)
	for _, fb := range []*models.OpportunityFeedback{
		{OpportunityID: opp.ID, VolunteerID: volunteerAID, Rating: 5},
		{OpportunityID: opp.ID, VolunteerID: volunteerBID, Rating: 4},
	} {
		require.NoError(t, env.feedback.CreateOpportunityFeedback(context.Background(), fb))
	}
	require.NoError(t, env.feedback.CreateVolunteerFeedback(context.Background(), &models.VolunteerFeedback{
		OpportunityID: opp.ID, RaterID: volunteerAID, RateeID: volunteerBID, Rating: 3,
	}))

	summary, err := env.feedbackSvc.ListOpportunityFeedback(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.5, summary.AverageRating, 0.001)

	ratings, err := env.feedbackSvc.ListVolunteerFeedback(context.Background(), volunteerBID)
	require.NoError(t, err)
	assert.Equal(t, 1, ratings.Count)
	assert.InDelta(t, 3.0, ratings.AverageRating, 0.001)

	empty, err := env.feedbackSvc.ListVolunteerFeedback(context.Background(), volunteerCID)
	require.NoError(t, err)
	assert.Zero(t, empty.AverageRating)
	assert.NotNil(t, empty.Feedback)

	_, err = env.feedbackSvc.ListOpportunityFeedback(context.Background(), 404)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
