package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/volunteerhub/internal/app/auth"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/domain"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
)

func TestApply(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)

	resp, err := env.applications.Apply(context.Background(), volunteerA, opp.ID, &dto.ApplyRequest{Motivation: "  I love beaches  "})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, resp.Status)
	assert.Equal(t, "I love beaches", resp.Motivation)
	assert.False(t, resp.HasAttended)
	assert.Nil(t, resp.ApprovedBy)
}

func TestApply_Duplicate(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)

	_, err := env.applications.Apply(context.Background(), volunteerA, opp.ID, nil)
	require.NoError(t, err)

	_, err = env.applications.Apply(context.Background(), volunteerA, opp.ID, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, domain.CodeDuplicateApplication, apperrors.CodeOf(err))
	assert.Len(t, env.apps.items, 1)
}

func TestApply_Errors(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)

	_, err := env.applications.Apply(context.Background(), manager, opp.ID, nil)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Equal(t, domain.CodeNotVolunteer, apperrors.CodeOf(err))

	_, err = env.applications.Apply(context.Background(), volunteerA, 404, nil)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	env.apps.err = errStoreDown
	_, err = env.applications.Apply(context.Background(), volunteerA, opp.ID, nil)
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestApply_ArchivedOpportunityIsAccepted(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(-10)

	resp, err := env.applications.Apply(context.Background(), volunteerA, opp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, resp.Status)
}

func TestDecide_Approve(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)
	app := env.seedApplication(volunteerAID, opp.ID, models.ApplicationPending, false)

	resp, err := env.applications.Decide(context.Background(), manager, app.ID, "approve")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, managerID, *resp.ApprovedBy)
	require.NotNil(t, resp.ApprovedAt)
	assert.True(t, env.now.Equal(*resp.ApprovedAt))

	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, "a@example.org", env.notifier.sent[0].ToEmail)
	assert.True(t, env.notifier.sent[0].Approved)
	assert.Equal(t, opp.Title, env.notifier.sent[0].OpportunityTitle)
}

func TestDecide_RejectIsFinal(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)
	app := env.seedApplication(volunteerAID, opp.ID, models.ApplicationPending, false)

	resp, err := env.applications.Decide(context.Background(), admin, app.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, resp.Status)

	_, err = env.applications.Decide(context.Background(), manager, app.ID, "approve")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, domain.CodeAlreadyDecided, apperrors.CodeOf(err))

	stored, err := env.apps.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, stored.Status)
	assert.False(t, env.notifier.sent[0].Approved)
}

func TestDecide_Errors(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)
	app := env.seedApplication(volunteerAID, opp.ID, models.ApplicationPending, false)

	tests := []struct {
		name     string
		actor    models.Actor
		appID    int64
		decision string
		kind     apperrors.Kind
		code     string
	}{
		{"unknown decision", manager, app.ID, "maybe", apperrors.KindValidationFailed, domain.CodeInvalidDecision},
		{"unknown application", manager, 999, "approve", apperrors.KindNotFound, ""},
		{"other organization", outsider, app.ID, "approve", apperrors.KindForbidden, auth.CodeMissingManageAccess},
		{"volunteer", volunteerB, app.ID, "approve", apperrors.KindForbidden, auth.CodeMissingManageAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.applications.Decide(context.Background(), tt.actor, tt.appID, tt.decision)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}

	stored, err := env.apps.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, stored.Status)
	assert.Empty(t, env.notifier.sent)
}

func TestDecide_NotificationFailureDoesNotFail(t *testing.T) {
	env := newTestEnv()
	env.notifier.err = errStoreDown
	opp := env.seedOpportunity(3)
	app := env.seedApplication(volunteerAID, opp.ID, models.ApplicationPending, false)

	resp, err := env.applications.Decide(context.Background(), manager, app.ID, "approve")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, resp.Status)
}

func TestDecide_ConcurrentDecisionsOnlyOneWins(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)
	app := env.seedApplication(volunteerAID, opp.ID, models.ApplicationPending, false)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		decision := "approve"
		if i%2 == 1 {
			decision = "reject"
		}
		wg.Add(1)
		go func(decision string) {
			defer wg.Done()
			_, err := env.applications.Decide(context.Background(), manager, app.ID, decision)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if apperrors.CodeOf(err) == domain.CodeAlreadyDecided {
				conflicts++
			}
		}(decision)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestMarkAttended(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(-1)
	approved := env.seedApplication(volunteerAID, opp.ID, models.ApplicationApproved, false)
	pending := env.seedApplication(volunteerBID, opp.ID, models.ApplicationPending, false)
	rejected := env.seedApplication(volunteerAID, env.seedOpportunity(-2).ID, models.ApplicationRejected, false)

	resp, err := env.applications.MarkAttended(context.Background(), manager, approved.ID, true)
	require.NoError(t, err)
	assert.True(t, resp.HasAttended)

	resp, err = env.applications.MarkAttended(context.Background(), manager, approved.ID, true)
	require.NoError(t, err)
	assert.True(t, resp.HasAttended)

	resp, err = env.applications.MarkAttended(context.Background(), manager, approved.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.HasAttended)

	_, err = env.applications.MarkAttended(context.Background(), manager, pending.ID, true)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidStateTransition, apperrors.KindOf(err))
	assert.Equal(t, domain.CodeNotApproved, apperrors.CodeOf(err))

	_, err = env.applications.MarkAttended(context.Background(), manager, rejected.ID, true)
	assert.Equal(t, apperrors.KindInvalidStateTransition, apperrors.KindOf(err))
	stored, err := env.apps.GetByID(context.Background(), rejected.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasAttended)
	assert.Equal(t, models.ApplicationRejected, stored.Status)

	_, err = env.applications.MarkAttended(context.Background(), outsider, approved.ID, true)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestGetApplication_Visibility(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)
	app := env.seedApplication(volunteerAID, opp.ID, models.ApplicationPending, false)

	for _, actor := range []models.Actor{volunteerA, manager, admin} {
		resp, err := env.applications.GetApplication(context.Background(), actor, app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, resp.ID)
	}

	_, err := env.applications.GetApplication(context.Background(), volunteerB, app.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestListForOpportunity(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(3)
	env.seedApplication(volunteerAID, opp.ID, models.ApplicationPending, false)
	env.seedApplication(volunteerBID, opp.ID, models.ApplicationApproved, false)
	env.seedApplication(volunteerCID, opp.ID, models.ApplicationPending, false)

	pending := models.ApplicationPending
	resp, err := env.applications.ListForOpportunity(context.Background(), manager, opp.ID, &dto.ApplicationFilterRequest{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, resp.Applications, 2)
	assert.Equal(t, int64(2), resp.Pagination.TotalItems)

	_, err = env.applications.ListForOpportunity(context.Background(), volunteerA, opp.ID, nil)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	bogus := models.ApplicationStatus("waitlisted")
	_, err = env.applications.ListForOpportunity(context.Background(), manager, opp.ID, &dto.ApplicationFilterRequest{Status: &bogus})
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))
}

func TestListMine(t *testing.T) {
	env := newTestEnv()
	first := env.seedOpportunity(3)
	second := env.seedOpportunity(4)
	env.seedApplication(volunteerAID, first.ID, models.ApplicationPending, false)
	env.seedApplication(volunteerAID, second.ID, models.ApplicationApproved, false)
	env.seedApplication(volunteerBID, first.ID, models.ApplicationPending, false)

	resp, err := env.applications.ListMine(context.Background(), volunteerA)
	require.NoError(t, err)
	assert.Len(t, resp, 2)

	_, err = env.applications.ListMine(context.Background(), manager)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}
