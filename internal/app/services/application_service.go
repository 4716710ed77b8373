package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/volunteerhub/internal/app/auth"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/app/repositories"
	"github.com/yigit/volunteerhub/internal/domain"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/email"
	"github.com/yigit/volunteerhub/internal/pkg/helpers"
)

// ApplicationService defines the interface for the application workflow
type ApplicationService interface {
	Apply(ctx context.Context, actor models.Actor, opportunityID int64, req *dto.ApplyRequest) (*dto.ApplicationResponse, error)
	Decide(ctx context.Context, actor models.Actor, applicationID int64, decision string) (*dto.ApplicationResponse, error)
	MarkAttended(ctx context.Context, actor models.Actor, applicationID int64, attended bool) (*dto.ApplicationResponse, error)
	GetApplication(ctx context.Context, actor models.Actor, applicationID int64) (*dto.ApplicationResponse, error)
	ListForOpportunity(ctx context.Context, actor models.Actor, opportunityID int64, filter *dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error)
	ListMine(ctx context.Context, actor models.Actor) ([]dto.ApplicationResponse, error)
}

// applicationServiceImpl implements ApplicationService
type applicationServiceImpl struct {
	appRepo      repositories.ApplicationStore
	oppRepo      repositories.OpportunityStore
	userRepo     repositories.UserStore
	authzService *auth.AuthorizationService
	notifier     email.Notifier
	logger       zerolog.Logger
	now          func() time.Time
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	appRepo repositories.ApplicationStore,
	oppRepo repositories.OpportunityStore,
	userRepo repositories.UserStore,
	authzService *auth.AuthorizationService,
	notifier email.Notifier,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appRepo:      appRepo,
		oppRepo:      oppRepo,
		userRepo:     userRepo,
		authzService: authzService,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// Apply records a pending application of the calling volunteer
func (s *applicationServiceImpl) Apply(ctx context.Context, actor models.Actor, opportunityID int64, req *dto.ApplyRequest) (*dto.ApplicationResponse, error) {
	now := s.now()
	motivation := ""
	if req != nil {
		motivation = req.Motivation
	}

	app, err := domain.NewApplication(actor, opportunityID, motivation, now)
	if err != nil {
		return nil, err
	}

	opp, err := s.loadOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if status := domain.ComputeStatus(opp, now); status == models.StatusArchived {
		s.logger.Info().
			Int64("opportunityID", opportunityID).
			Int64("volunteerID", actor.ID).
			Msg("Application submitted to an archived opportunity")
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateApplication) {
			return nil, &apperrors.CustomError{
				Err:     apperrors.ErrDuplicateApplication,
				Message: "you have already applied to this opportunity",
				Code:    domain.CodeDuplicateApplication,
			}
		}
		s.logger.Error().Err(err).Int64("opportunityID", opportunityID).Int64("volunteerID", actor.ID).Msg("Failed to create application")
		return nil, storageError("create application", err)
	}

	s.logger.Info().
		Int64("applicationID", app.ID).
		Int64("opportunityID", opportunityID).
		Int64("volunteerID", actor.ID).
		Msg("Application submitted")

	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// Decide approves or rejects a pending application. The row is re-read under a
// lock so that of two concurrent decisions only the first succeeds.
func (s *applicationServiceImpl) Decide(ctx context.Context, actor models.Actor, applicationID int64, decision string) (*dto.ApplicationResponse, error) {
	d, err := domain.ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	opp, err := s.authorizeManager(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	app, err := s.appRepo.Mutate(ctx, applicationID, func(app *models.Application) error {
		return domain.Decide(app, d, actor.ID, s.now())
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Failed to record decision")
		}
		return nil, storageError("decide application", err)
	}

	s.logger.Info().
		Int64("applicationID", applicationID).
		Int64("decidedBy", actor.ID).
		Str("status", string(app.Status)).
		Msg("Application decided")

	s.notifyDecision(ctx, app, opp)

	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// MarkAttended sets the attendance flag of an approved application
func (s *applicationServiceImpl) MarkAttended(ctx context.Context, actor models.Actor, applicationID int64, attended bool) (*dto.ApplicationResponse, error) {
	if _, err := s.authorizeManager(ctx, actor, applicationID); err != nil {
		return nil, err
	}

	app, err := s.appRepo.Mutate(ctx, applicationID, func(app *models.Application) error {
		return domain.SetAttendance(app, attended, s.now())
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Failed to record attendance")
		}
		return nil, storageError("mark attendance", err)
	}

	s.logger.Info().
		Int64("applicationID", applicationID).
		Bool("attended", app.HasAttended).
		Msg("Attendance recorded")

	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// GetApplication is visible to the applicant and to the opportunity's managers
func (s *applicationServiceImpl) GetApplication(ctx context.Context, actor models.Actor, applicationID int64) (*dto.ApplicationResponse, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if app.VolunteerID != actor.ID {
		opp, err := s.loadOpportunity(ctx, app.OpportunityID)
		if err != nil {
			return nil, err
		}
		if err := s.authzService.RequireManageAccess(ctx, opp.OrganizationID, actor); err != nil {
			return nil, err
		}
	}

	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// ListForOpportunity lists an opportunity's applications for its managers
func (s *applicationServiceImpl) ListForOpportunity(ctx context.Context, actor models.Actor, opportunityID int64, filter *dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error) {
	if filter == nil {
		filter = &dto.ApplicationFilterRequest{}
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, apperrors.NewValidationError(map[string]string{"status": "Status must be one of pending, approved, rejected"})
	}

	opp, err := s.loadOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.RequireManageAccess(ctx, opp.OrganizationID, actor); err != nil {
		return nil, err
	}

	apps, err := s.appRepo.ListByOpportunity(ctx, opportunityID, filter.Status)
	if err != nil {
		s.logger.Error().Err(err).Int64("opportunityID", opportunityID).Msg("Failed to list applications")
		return nil, storageError("list applications", err)
	}

	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	items := helpers.Paginate(apps, page, size)

	resp := &dto.ApplicationListResponse{
		Applications: make([]dto.ApplicationResponse, 0, len(items)),
		Pagination:   helpers.NewPaginationInfo(int64(len(apps)), page, size),
	}
	for _, app := range items {
		resp.Applications = append(resp.Applications, dto.NewApplicationResponse(app))
	}
	return resp, nil
}

// ListMine lists the calling volunteer's own applications
func (s *applicationServiceImpl) ListMine(ctx context.Context, actor models.Actor) ([]dto.ApplicationResponse, error) {
	if actor.Role != models.RoleVolunteer {
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "only volunteers have applications",
			Code:    domain.CodeNotVolunteer,
		}
	}

	apps, err := s.appRepo.ListByVolunteer(ctx, actor.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("volunteerID", actor.ID).Msg("Failed to list volunteer applications")
		return nil, storageError("list volunteer applications", err)
	}

	resp := make([]dto.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, dto.NewApplicationResponse(app))
	}
	return resp, nil
}

// authorizeManager resolves the application's opportunity and checks the
// actor's manage-access over its organization
func (s *applicationServiceImpl) authorizeManager(ctx context.Context, actor models.Actor, applicationID int64) (*models.Opportunity, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	opp, err := s.loadOpportunity(ctx, app.OpportunityID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.RequireManageAccess(ctx, opp.OrganizationID, actor); err != nil {
		return nil, err
	}
	return opp, nil
}

func (s *applicationServiceImpl) loadApplication(ctx context.Context, id int64) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewCustomError(apperrors.ErrApplicationNotFound, fmt.Sprintf("application %d not found", id))
		}
		s.logger.Error().Err(err).Int64("applicationID", id).Msg("Failed to load application")
		return nil, storageError("get application", err)
	}
	return app, nil
}

func (s *applicationServiceImpl) loadOpportunity(ctx context.Context, id int64) (*models.Opportunity, error) {
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

// notifyDecision is best-effort: the decision is already committed
func (s *applicationServiceImpl) notifyDecision(ctx context.Context, app *models.Application, opp *models.Opportunity) {
	if s.notifier == nil {
		return
	}

	volunteer, err := s.userRepo.GetByID(ctx, app.VolunteerID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("volunteerID", app.VolunteerID).Msg("Could not load volunteer for decision email")
		return
	}

	err = s.notifier.SendApplicationDecision(ctx, email.DecisionMessage{
		VolunteerID:      app.VolunteerID,
		ApplicationID:    app.ID,
		OpportunityID:    opp.ID,
		ToEmail:          volunteer.Email,
		ToName:           volunteer.FullName(),
		OpportunityTitle: opp.Title,
		Approved:         app.Status == models.ApplicationApproved,
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Failed to send decision email")
	}
}
