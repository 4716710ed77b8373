package auth

import (
	"context"
	"fmt"

	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/repositories"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/logger"
)

// Precondition codes of authorization failures
const (
	CodeMissingManageAccess   = "MISSING_MANAGE_ACCESS"
	CodeNotOpportunityCreator = "NOT_OPPORTUNITY_CREATOR"
)

// AuthorizationService answers manage-access and ownership questions
type AuthorizationService struct {
	orgRepo repositories.OrganizationStore
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(orgRepo repositories.OrganizationStore) *AuthorizationService {
	return &AuthorizationService{orgRepo: orgRepo}
}

// HasManageAccess reports whether actor may administer the organization's
// opportunities and applications: administrators always, otherwise members.
func (s *AuthorizationService) HasManageAccess(ctx context.Context, organizationID int64, actor models.Actor) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.Role != models.RoleOrganization {
		return false, nil
	}

	isMember, err := s.orgRepo.IsMember(ctx, organizationID, actor.ID)
	if err != nil {
		logger.Error().Err(err).
			Int64("organizationID", organizationID).
			Int64("userID", actor.ID).
			Msg("Error checking organization membership")
		return false, apperrors.NewUnavailableError("check organization membership", err)
	}
	return isMember, nil
}

// RequireManageAccess is HasManageAccess as a Forbidden error
func (s *AuthorizationService) RequireManageAccess(ctx context.Context, organizationID int64, actor models.Actor) error {
	ok, err := s.HasManageAccess(ctx, organizationID, actor)
	if err != nil {
		return err
	}
	if !ok {
		return &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: fmt.Sprintf("you do not have manage access to organization %d", organizationID),
			Code:    CodeMissingManageAccess,
		}
	}
	return nil
}

// RequireCreator allows only the user who created the opportunity
func (s *AuthorizationService) RequireCreator(opp *models.Opportunity, actor models.Actor) error {
	if opp.CreatedBy != actor.ID {
		return &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "only the creator of the opportunity can do this",
			Code:    CodeNotOpportunityCreator,
		}
	}
	return nil
}
