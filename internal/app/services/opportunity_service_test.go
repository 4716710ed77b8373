package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/volunteerhub/internal/app/auth"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/validation"
)

func intPtr(v int) *int { return &v }

func validRequest() *dto.OpportunityRequest {
	return &dto.OpportunityRequest{
		OrganizationID: orgID,
		OpportunityForm: validation.OpportunityForm{
			Title:         "Beach cleanup",
			ShortSummary:  "Help us clear the north beach",
			Description:   "We meet at the pier and spend the morning collecting litter along the shore.",
			Mode:          models.ModeOnsite,
			DateType:      models.DateTypeSingleDay,
			StartDate:     "2025-06-20",
			Address:       "1 Pier Road",
			City:          "Porto",
			State:         "Porto",
			Country:       "Portugal",
			MaxVolunteers: intPtr(25),
			Skills:        []string{" lifting ", "", "lifting", "first aid"},
			ContactName:   "Rita",
			ContactEmail:  "rita@greenshores.org",
			ContactPhone:  "+351 912 345 678",
		},
	}
}

func TestCreateOpportunity(t *testing.T) {
	env := newTestEnv()

	resp, err := env.opportunities.CreateOpportunity(context.Background(), manager, validRequest())
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, models.StatusUpcoming, resp.Status)
	assert.Equal(t, []string{"lifting", "first aid"}, resp.Skills)

	stored, err := env.opps.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, managerID, stored.CreatedBy)
	assert.Equal(t, models.ManualStatusPublished, stored.Status)
}

func TestCreateOpportunity_RemoteFillsLocation(t *testing.T) {
	env := newTestEnv()
	req := validRequest()
	req.Mode = models.ModeRemote
	req.Address, req.City, req.State, req.Country = "", "", "", ""

	resp, err := env.opportunities.CreateOpportunity(context.Background(), manager, req)
	require.NoError(t, err)

	stored, err := env.opps.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RemoteLocation, stored.Address)
	assert.Equal(t, models.RemoteLocation, stored.City)
	assert.Equal(t, models.RemoteLocation, stored.State)
	assert.Equal(t, models.RemoteLocation, stored.Country)
}

func TestCreateOpportunity_InvalidForm(t *testing.T) {
	env := newTestEnv()
	req := validRequest()
	req.Title = "ab"
	req.StartDate = "2025-06-01"

	_, err := env.opportunities.CreateOpportunity(context.Background(), manager, req)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, validation.FieldTitle)
	assert.Contains(t, verr.Fields, validation.FieldStartDate)
	assert.Empty(t, env.opps.items)
}

func TestCreateOpportunity_Authorization(t *testing.T) {
	tests := []struct {
		name  string
		actor models.Actor
		kind  apperrors.Kind
	}{
		{"member of another organization", outsider, apperrors.KindForbidden},
		{"volunteer", volunteerA, apperrors.KindForbidden},
		{"admin", admin, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			_, err := env.opportunities.CreateOpportunity(context.Background(), tt.actor, validRequest())
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}

func TestCreateOpportunity_MembershipLookupFails(t *testing.T) {
	env := newTestEnv()
	env.orgs.err = errStoreDown

	_, err := env.opportunities.CreateOpportunity(context.Background(), manager, validRequest())
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestUpdateOpportunity_OnlyCreator(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(5)
	env.orgs.members[orgID][outsiderID] = models.MemberRoleManager

	_, err := env.opportunities.UpdateOpportunity(context.Background(), outsider, opp.ID, validRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Equal(t, auth.CodeNotOpportunityCreator, apperrors.CodeOf(err))
}

func TestUpdateOpportunity_KeepsUnchangedPastStartDate(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(-3)
	req := validRequest()
	req.StartDate = env.day(-3).Format(validation.DateLayout)
	req.Title = "Beach cleanup, round two"

	resp, err := env.opportunities.UpdateOpportunity(context.Background(), manager, opp.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Beach cleanup, round two", resp.Title)
	assert.Equal(t, models.StatusArchived, resp.Status)

	req.StartDate = env.day(-2).Format(validation.DateLayout)
	_, err = env.opportunities.UpdateOpportunity(context.Background(), manager, opp.ID, req)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Start date cannot be in the past", verr.Fields[validation.FieldStartDate])
}

func TestCloseOpportunity(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(5)

	resp, err := env.opportunities.CloseOpportunity(context.Background(), manager, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, resp.Status)

	resp, err = env.opportunities.CloseOpportunity(context.Background(), manager, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, resp.Status)

	_, err = env.opportunities.CloseOpportunity(context.Background(), outsider, opp.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestDeleteOpportunity(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(5)

	err := env.opportunities.DeleteOpportunity(context.Background(), admin, opp.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, env.opportunities.DeleteOpportunity(context.Background(), manager, opp.ID))

	_, err = env.opportunities.GetOpportunity(context.Background(), opp.ID)
	assert.ErrorIs(t, err, apperrors.ErrOpportunityNotFound)
}

func TestGetOpportunity_CountsApproved(t *testing.T) {
	env := newTestEnv()
	opp := env.seedOpportunity(0)
	env.seedApplication(volunteerAID, opp.ID, models.ApplicationApproved, false)
	env.seedApplication(volunteerBID, opp.ID, models.ApplicationPending, false)

	resp, err := env.opportunities.GetOpportunity(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, resp.Status)
	assert.Equal(t, 1, resp.ApprovedVolunteers)
}

func TestGetOpportunity_StoreDown(t *testing.T) {
	env := newTestEnv()
	env.opps.err = errStoreDown

	_, err := env.opportunities.GetOpportunity(context.Background(), 1)
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestListOpportunities_FiltersOnDerivedStatus(t *testing.T) {
	env := newTestEnv()
	env.seedOpportunity(-1)
	upcoming := env.seedOpportunity(3)
	env.seedOpportunity(0)
	closed := env.seedOpportunity(7)
	closed.Status = models.ManualStatusClosed
	env.opps.put(closed)

	status := models.StatusUpcoming
	resp, err := env.opportunities.ListOpportunities(context.Background(), &dto.OpportunityFilterRequest{Status: &status})
	require.NoError(t, err)
	require.Len(t, resp.Opportunities, 1)
	assert.Equal(t, upcoming.ID, resp.Opportunities[0].ID)
	assert.Equal(t, int64(1), resp.Pagination.TotalItems)

	archived := models.StatusArchived
	resp, err = env.opportunities.ListOpportunities(context.Background(), &dto.OpportunityFilterRequest{Status: &archived})
	require.NoError(t, err)
	assert.Len(t, resp.Opportunities, 2)
}

func TestListOpportunities_Paginates(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 5; i++ {
		env.seedOpportunity(i + 1)
	}

	resp, err := env.opportunities.ListOpportunities(context.Background(), &dto.OpportunityFilterRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Opportunities, 2)
	assert.Equal(t, int64(5), resp.Pagination.TotalItems)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestListOpportunities_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv()
	status := models.DerivedStatus("draft")

	_, err := env.opportunities.ListOpportunities(context.Background(), &dto.OpportunityFilterRequest{Status: &status})
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))
}

func TestValidateField(t *testing.T) {
	env := newTestEnv()
	form := &validation.OpportunityForm{Mode: models.ModeRemote}

	resp, err := env.opportunities.ValidateField(validation.FieldCity, form)
	require.NoError(t, err)
	assert.True(t, resp.Valid)

	resp, err = env.opportunities.ValidateField(validation.FieldTitle, form)
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "Title is required", resp.Error)

	_, err = env.opportunities.ValidateField("budget", form)
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))
}

func TestValidateForm_AgreesWithValidateField(t *testing.T) {
	env := newTestEnv()
	req := validRequest()
	req.ContactPhone = "123"
	req.EndDate = "2025-06-21"

	result := env.opportunities.ValidateForm(&req.OpportunityForm)
	assert.False(t, result.Valid)
	for _, field := range validation.Fields {
		single, err := env.opportunities.ValidateField(field, &req.OpportunityForm)
		require.NoError(t, err)
		assert.Equal(t, result.Errors[field], single.Error, field)
	}
}
