package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/volunteerhub/internal/app/auth"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/app/repositories"
	"github.com/yigit/volunteerhub/internal/domain"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/helpers"
	"github.com/yigit/volunteerhub/internal/pkg/validation"
)

// OpportunityService defines the interface for opportunity operations
type OpportunityService interface {
	CreateOpportunity(ctx context.Context, actor models.Actor, req *dto.OpportunityRequest) (*dto.OpportunityResponse, error)
	UpdateOpportunity(ctx context.Context, actor models.Actor, id int64, req *dto.OpportunityRequest) (*dto.OpportunityResponse, error)
	CloseOpportunity(ctx context.Context, actor models.Actor, id int64) (*dto.OpportunityResponse, error)
	DeleteOpportunity(ctx context.Context, actor models.Actor, id int64) error
	GetOpportunity(ctx context.Context, id int64) (*dto.OpportunityResponse, error)
	ListOpportunities(ctx context.Context, filter *dto.OpportunityFilterRequest) (*dto.OpportunityListResponse, error)
	ValidateForm(form *validation.OpportunityForm) dto.FormValidationResponse
	ValidateField(field string, form *validation.OpportunityForm) (*dto.FieldValidationResponse, error)
}

// opportunityServiceImpl implements OpportunityService
type opportunityServiceImpl struct {
	oppRepo      repositories.OpportunityStore
	appRepo      repositories.ApplicationStore
	authzService *auth.AuthorizationService
	rules        validation.Rules
	logger       zerolog.Logger
	now          func() time.Time
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	oppRepo repositories.OpportunityStore,
	appRepo repositories.ApplicationStore,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) OpportunityService {
	return &opportunityServiceImpl{
		oppRepo:      oppRepo,
		appRepo:      appRepo,
		authzService: authzService,
		rules:        validation.DefaultRules,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateOpportunity validates the form and publishes a new opportunity for an
// organization the actor manages
func (s *opportunityServiceImpl) CreateOpportunity(ctx context.Context, actor models.Actor, req *dto.OpportunityRequest) (*dto.OpportunityResponse, error) {
	if actor.Role != models.RoleOrganization && !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only organizations can create opportunities")
	}
	if req.OrganizationID <= 0 {
		return nil, apperrors.NewValidationError(map[string]string{"organizationId": "Organization is required"})
	}
	if err := s.authzService.RequireManageAccess(ctx, req.OrganizationID, actor); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.rules.ValidateForm(&req.OpportunityForm, now).Err(); err != nil {
		return nil, err
	}

	opp := &models.Opportunity{
		OrganizationID: req.OrganizationID,
		CreatedBy:      actor.ID,
		Status:         models.ManualStatusPublished,
	}
	if err := applyForm(opp, &req.OpportunityForm, now.Location()); err != nil {
		return nil, err
	}

	if err := s.oppRepo.Create(ctx, opp); err != nil {
		s.logger.Error().Err(err).Int64("organizationID", req.OrganizationID).Msg("Failed to create opportunity")
		return nil, storageError("create opportunity", err)
	}

	s.logger.Info().
		Int64("opportunityID", opp.ID).
		Int64("organizationID", opp.OrganizationID).
		Int64("createdBy", actor.ID).
		Msg("Opportunity created")

	resp := dto.NewOpportunityResponse(opp, domain.ComputeStatus(opp, now), 0)
	return &resp, nil
}

// UpdateOpportunity replaces the editable fields. Only the creator may edit.
// A start date that is already in the past is accepted when it is unchanged.
func (s *opportunityServiceImpl) UpdateOpportunity(ctx context.Context, actor models.Actor, id int64, req *dto.OpportunityRequest) (*dto.OpportunityResponse, error) {
	opp, err := s.getOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.RequireCreator(opp, actor); err != nil {
		return nil, err
	}

	now := s.now()
	result := s.rules.ValidateForm(&req.OpportunityForm, now)
	if msg, ok := result.Errors[validation.FieldStartDate]; ok && startDateUnchanged(opp, req.OpportunityForm.StartDate, now.Location()) {
		s.logger.Debug().Int64("opportunityID", id).Str("error", msg).Msg("Keeping unchanged past start date")
		delete(result.Errors, validation.FieldStartDate)
		result.Valid = len(result.Errors) == 0
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	if err := applyForm(opp, &req.OpportunityForm, now.Location()); err != nil {
		return nil, err
	}
	if err := s.oppRepo.Update(ctx, opp); err != nil {
		s.logger.Error().Err(err).Int64("opportunityID", id).Msg("Failed to update opportunity")
		return nil, storageError("update opportunity", err)
	}

	s.logger.Info().Int64("opportunityID", id).Msg("Opportunity updated")
	return s.toResponse(ctx, opp, now)
}

// CloseOpportunity archives the opportunity regardless of its dates
func (s *opportunityServiceImpl) CloseOpportunity(ctx context.Context, actor models.Actor, id int64) (*dto.OpportunityResponse, error) {
	opp, err := s.getOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp.CreatedBy != actor.ID {
		if err := s.authzService.RequireManageAccess(ctx, opp.OrganizationID, actor); err != nil {
			return nil, err
		}
	}

	if !opp.IsClosed() {
		if err := s.oppRepo.SetStatus(ctx, id, models.ManualStatusClosed); err != nil {
			s.logger.Error().Err(err).Int64("opportunityID", id).Msg("Failed to close opportunity")
			return nil, storageError("close opportunity", err)
		}
		opp.Status = models.ManualStatusClosed
		s.logger.Info().Int64("opportunityID", id).Int64("closedBy", actor.ID).Msg("Opportunity closed")
	}

	return s.toResponse(ctx, opp, s.now())
}

// DeleteOpportunity removes an opportunity with its applications and feedback
func (s *opportunityServiceImpl) DeleteOpportunity(ctx context.Context, actor models.Actor, id int64) error {
	opp, err := s.getOpportunity(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authzService.RequireCreator(opp, actor); err != nil {
		return err
	}

	if err := s.oppRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("opportunityID", id).Msg("Failed to delete opportunity")
		return storageError("delete opportunity", err)
	}

	s.logger.Info().Int64("opportunityID", id).Int64("deletedBy", actor.ID).Msg("Opportunity deleted")
	return nil
}

// GetOpportunity returns one opportunity with its status derived now
func (s *opportunityServiceImpl) GetOpportunity(ctx context.Context, id int64) (*dto.OpportunityResponse, error) {
	opp, err := s.getOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, opp, s.now())
}

// ListOpportunities filters on stored columns in the store and on the derived
// status here, then paginates the result
func (s *opportunityServiceImpl) ListOpportunities(ctx context.Context, filter *dto.OpportunityFilterRequest) (*dto.OpportunityListResponse, error) {
	if filter == nil {
		filter = &dto.OpportunityFilterRequest{}
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, apperrors.NewValidationError(map[string]string{"status": "Status must be one of upcoming, active, archived"})
	}
	if filter.Mode != nil && !filter.Mode.IsValid() {
		return nil, apperrors.NewValidationError(map[string]string{"mode": "Mode must be one of onsite, remote, hybrid"})
	}
	if filter.DateType != nil && !filter.DateType.IsValid() {
		return nil, apperrors.NewValidationError(map[string]string{"dateType": "Date type must be one of single_day, multi_day, ongoing"})
	}

	s.logger.Debug().Interface("filter", filter).Msg("Listing opportunities")

	opps, err := s.oppRepo.List(ctx, repositories.OpportunityFilter{
		OrganizationID: filter.OrganizationID,
		Mode:           filter.Mode,
		DateType:       filter.DateType,
		City:           filter.City,
		Search:         filter.Search,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list opportunities")
		return nil, storageError("list opportunities", err)
	}

	now := s.now()
	type derived struct {
		opp    *models.Opportunity
		status models.DerivedStatus
	}
	matching := make([]derived, 0, len(opps))
	for _, opp := range opps {
		status := domain.ComputeStatus(opp, now)
		if filter.Status != nil && status != *filter.Status {
			continue
		}
		matching = append(matching, derived{opp: opp, status: status})
	}

	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	items := helpers.Paginate(matching, page, size)

	resp := &dto.OpportunityListResponse{
		Opportunities: make([]dto.OpportunityResponse, 0, len(items)),
		Pagination:    helpers.NewPaginationInfo(int64(len(matching)), page, size),
	}
	for _, item := range items {
		approved, err := s.appRepo.CountByStatus(ctx, item.opp.ID, models.ApplicationApproved)
		if err != nil {
			return nil, storageError("count approved applications", err)
		}
		resp.Opportunities = append(resp.Opportunities, dto.NewOpportunityResponse(item.opp, item.status, approved))
	}
	return resp, nil
}

// ValidateForm runs every field rule against the form
func (s *opportunityServiceImpl) ValidateForm(form *validation.OpportunityForm) dto.FormValidationResponse {
	result := s.rules.ValidateForm(form, s.now())
	return dto.FormValidationResponse{Valid: result.Valid, Errors: result.Errors}
}

// ValidateField runs one field rule. Unknown field names are a bad request.
func (s *opportunityServiceImpl) ValidateField(field string, form *validation.OpportunityForm) (*dto.FieldValidationResponse, error) {
	if !validation.IsKnownField(field) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown field %q", field))
	}
	msg := s.rules.ValidateField(field, form, s.now())
	return &dto.FieldValidationResponse{Field: field, Valid: msg == "", Error: msg}, nil
}

func (s *opportunityServiceImpl) getOpportunity(ctx context.Context, id int64) (*models.Opportunity, error) {
	opp, err := s.oppRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewCustomError(apperrors.ErrOpportunityNotFound, fmt.Sprintf("opportunity %d not found", id))
		}
		s.logger.Error().Err(err).Int64("opportunityID", id).Msg("Failed to load opportunity")
		return nil, storageError("get opportunity", err)
	}
	return opp, nil
}

func (s *opportunityServiceImpl) toResponse(ctx context.Context, opp *models.Opportunity, now time.Time) (*dto.OpportunityResponse, error) {
	approved, err := s.appRepo.CountByStatus(ctx, opp.ID, models.ApplicationApproved)
	if err != nil {
		s.logger.Error().Err(err).Int64("opportunityID", opp.ID).Msg("Failed to count approved applications")
		return nil, storageError("count approved applications", err)
	}
	resp := dto.NewOpportunityResponse(opp, domain.ComputeStatus(opp, now), approved)
	return &resp, nil
}

// applyForm copies a validated form onto opp. Remote opportunities get the
// "Remote" placeholder in every location field.
func applyForm(opp *models.Opportunity, form *validation.OpportunityForm, loc *time.Location) error {
	start, hasStart, err := validation.ParseFormDate(form.StartDate, loc)
	if err != nil {
		return apperrors.NewValidationError(map[string]string{validation.FieldStartDate: "Start date is not a valid date"})
	}
	end, hasEnd, err := validation.ParseFormDate(form.EndDate, loc)
	if err != nil {
		return apperrors.NewValidationError(map[string]string{validation.FieldEndDate: "End date is not a valid date"})
	}

	opp.Title = strings.TrimSpace(form.Title)
	opp.ShortSummary = strings.TrimSpace(form.ShortSummary)
	opp.Description = strings.TrimSpace(form.Description)
	opp.Mode = form.Mode
	opp.DateType = form.DateType
	opp.StartDate = nil
	opp.EndDate = nil
	if hasStart {
		opp.StartDate = &start
	}
	if hasEnd && form.DateType != models.DateTypeSingleDay {
		opp.EndDate = &end
	}
	opp.StartTime = strings.TrimSpace(form.StartTime)
	opp.EndTime = strings.TrimSpace(form.EndTime)

	if form.Mode == models.ModeRemote {
		opp.Address = models.RemoteLocation
		opp.City = models.RemoteLocation
		opp.State = models.RemoteLocation
		opp.Country = models.RemoteLocation
	} else {
		opp.Address = strings.TrimSpace(form.Address)
		opp.City = strings.TrimSpace(form.City)
		opp.State = strings.TrimSpace(form.State)
		opp.Country = strings.TrimSpace(form.Country)
	}
	opp.OsrmLink = strings.TrimSpace(form.OsrmLink)

	if form.MaxVolunteers != nil {
		opp.MaxVolunteers = *form.MaxVolunteers
	}
	opp.Skills = cleanList(form.Skills)
	opp.Causes = cleanList(form.Causes)
	opp.Languages = cleanList(form.Languages)
	opp.GenderPreference = strings.TrimSpace(form.GenderPreference)

	opp.ContactName = strings.TrimSpace(form.ContactName)
	opp.ContactEmail = strings.TrimSpace(form.ContactEmail)
	opp.ContactPhone = strings.TrimSpace(form.ContactPhone)
	return nil
}

func startDateUnchanged(opp *models.Opportunity, submitted string, loc *time.Location) bool {
	if opp.StartDate == nil {
		return false
	}
	start, ok, err := validation.ParseFormDate(submitted, loc)
	if err != nil || !ok {
		return false
	}
	return validation.StartOfDay(start, loc).Equal(validation.StartOfDay(*opp.StartDate, loc))
}

// cleanList trims entries and drops empty ones and duplicates
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
