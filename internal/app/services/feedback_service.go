package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/app/repositories"
	"github.com/yigit/volunteerhub/internal/domain"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
)

// Feedback limits
const (
	MaxFeedbackCommentLength = 2000
	MaxFeedbackImages        = 5
)

// FeedbackService defines the interface for post-event feedback
type FeedbackService interface {
	SubmitOpportunityFeedback(ctx context.Context, actor models.Actor, opportunityID int64, req *dto.OpportunityFeedbackRequest) (*dto.OpportunityFeedbackResponse, error)
	SubmitVolunteerFeedback(ctx context.Context, actor models.Actor, opportunityID int64, req *dto.VolunteerFeedbackRequest) (*dto.VolunteerFeedbackResponse, error)
	ListOpportunityFeedback(ctx context.Context, opportunityID int64) (*dto.FeedbackSummaryResponse, error)
	ListVolunteerFeedback(ctx context.Context, volunteerID int64) (*dto.VolunteerRatingResponse, error)
}

// feedbackServiceImpl implements FeedbackService
type feedbackServiceImpl struct {
	feedbackRepo repositories.FeedbackStore
	appRepo      repositories.ApplicationStore
	oppRepo      repositories.OpportunityStore
	urlValidator *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	feedbackRepo repositories.FeedbackStore,
	appRepo repositories.ApplicationStore,
	oppRepo repositories.OpportunityStore,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackServiceImpl{
		feedbackRepo: feedbackRepo,
		appRepo:      appRepo,
		oppRepo:      oppRepo,
		urlValidator: validator.New(),
		logger:       logger,
		now:          time.Now,
	}
}

// SubmitOpportunityFeedback stores an attended volunteer's rating of an ended opportunity
func (s *feedbackServiceImpl) SubmitOpportunityFeedback(ctx context.Context, actor models.Actor, opportunityID int64, req *dto.OpportunityFeedbackRequest) (*dto.OpportunityFeedbackResponse, error) {
	fields := s.validateContent(req.Rating, req.Comment)
	if len(req.ImageURLs) > MaxFeedbackImages {
		fields["imageUrls"] = fmt.Sprintf("At most %d images can be attached", MaxFeedbackImages)
	} else {
		for _, raw := range req.ImageURLs {
			if err := s.urlValidator.Var(strings.TrimSpace(raw), "required,url"); err != nil {
				fields["imageUrls"] = "Every image must be a valid URL"
				break
			}
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	now := s.now()
	opp, err := s.loadOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	app, err := s.findApplication(ctx, actor.ID, opportunityID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckOpportunityFeedback(app, opp, now); err != nil {
		return nil, err
	}

	fb := &models.OpportunityFeedback{
		OpportunityID: opportunityID,
		VolunteerID:   actor.ID,
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
		Testimonial:   strings.TrimSpace(req.Testimonial),
		ImageURLs:     trimAll(req.ImageURLs),
		CreatedAt:     now,
	}
	if err := s.feedbackRepo.CreateOpportunityFeedback(ctx, fb); err != nil {
		return nil, s.feedbackError("create opportunity feedback", err)
	}

	s.logger.Info().
		Int64("opportunityID", opportunityID).
		Int64("volunteerID", actor.ID).
		Int("rating", fb.Rating).
		Msg("Opportunity feedback submitted")

	resp := dto.NewOpportunityFeedbackResponse(fb)
	return &resp, nil
}

// SubmitVolunteerFeedback stores one attended participant's rating of another
func (s *feedbackServiceImpl) SubmitVolunteerFeedback(ctx context.Context, actor models.Actor, opportunityID int64, req *dto.VolunteerFeedbackRequest) (*dto.VolunteerFeedbackResponse, error) {
	if fields := s.validateContent(req.Rating, req.Comment); len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	now := s.now()
	opp, err := s.loadOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	raterApp, err := s.findApplication(ctx, actor.ID, opportunityID)
	if err != nil {
		return nil, err
	}
	rateeApp, err := s.findApplication(ctx, req.RateeID, opportunityID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVolunteerFeedback(raterApp, rateeApp, actor.ID, req.RateeID, opp, now); err != nil {
		return nil, err
	}

	fb := &models.VolunteerFeedback{
		OpportunityID: opportunityID,
		RaterID:       actor.ID,
		RateeID:       req.RateeID,
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
		CreatedAt:     now,
	}
	if err := s.feedbackRepo.CreateVolunteerFeedback(ctx, fb); err != nil {
		return nil, s.feedbackError("create volunteer feedback", err)
	}

	s.logger.Info().
		Int64("opportunityID", opportunityID).
		Int64("raterID", actor.ID).
		Int64("rateeID", req.RateeID).
		Msg("Volunteer feedback submitted")

	resp := dto.NewVolunteerFeedbackResponse(fb)
	return &resp, nil
}

// ListOpportunityFeedback returns an opportunity's feedback and average rating
func (s *feedbackServiceImpl) ListOpportunityFeedback(ctx context.Context, opportunityID int64) (*dto.FeedbackSummaryResponse, error) {
	if _, err := s.loadOpportunity(ctx, opportunityID); err != nil {
		return nil, err
	}

	items, err := s.feedbackRepo.ListOpportunityFeedback(ctx, opportunityID)
	if err != nil {
		s.logger.Error().Err(err).Int64("opportunityID", opportunityID).Msg("Failed to list opportunity feedback")
		return nil, storageError("list opportunity feedback", err)
	}

	resp := &dto.FeedbackSummaryResponse{
		OpportunityID: opportunityID,
		Count:         len(items),
		Feedback:      make([]dto.OpportunityFeedbackResponse, 0, len(items)),
	}
	total := 0
	for _, fb := range items {
		total += fb.Rating
		resp.Feedback = append(resp.Feedback, dto.NewOpportunityFeedbackResponse(fb))
	}
	resp.AverageRating = average(total, len(items))
	return resp, nil
}

// ListVolunteerFeedback returns the ratings a volunteer received
func (s *feedbackServiceImpl) ListVolunteerFeedback(ctx context.Context, volunteerID int64) (*dto.VolunteerRatingResponse, error) {
	items, err := s.feedbackRepo.ListVolunteerFeedback(ctx, volunteerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("volunteerID", volunteerID).Msg("Failed to list volunteer feedback")
		return nil, storageError("list volunteer feedback", err)
	}

	resp := &dto.VolunteerRatingResponse{
		VolunteerID: volunteerID,
		Count:       len(items),
		Feedback:    make([]dto.VolunteerFeedbackResponse, 0, len(items)),
	}
	total := 0
	for _, fb := range items {
		total += fb.Rating
		resp.Feedback = append(resp.Feedback, dto.NewVolunteerFeedbackResponse(fb))
	}
	resp.AverageRating = average(total, len(items))
	return resp, nil
}

func (s *feedbackServiceImpl) validateContent(rating int, comment string) map[string]string {
	fields := make(map[string]string)
	if err := domain.ValidateRating(rating); err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			for k, v := range verr.Fields {
				fields[k] = v
			}
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(comment)) > MaxFeedbackCommentLength {
		fields["comment"] = fmt.Sprintf("Comment must be at most %d characters", MaxFeedbackCommentLength)
	}
	return fields
}

// findApplication returns nil without error when the volunteer never applied
func (s *feedbackServiceImpl) findApplication(ctx context.Context, volunteerID, opportunityID int64) (*models.Application, error) {
	app, err := s.appRepo.GetByVolunteerAndOpportunity(ctx, volunteerID, opportunityID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, nil
		}
		s.logger.Error().Err(err).Int64("volunteerID", volunteerID).Int64("opportunityID", opportunityID).Msg("Failed to load application")
		return nil, storageError("get application", err)
	}
	return app, nil
}

func (s *feedbackServiceImpl) loadOpportunity(ctx context.Context, id int64) (*models.Opportunity, error) {
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

func (s *feedbackServiceImpl) feedbackError(op string, err error) error {
	if errors.Is(err, apperrors.ErrDuplicateFeedback) {
		return &apperrors.CustomError{
			Err:     apperrors.ErrDuplicateFeedback,
			Message: "you have already submitted this feedback",
			Code:    domain.CodeDuplicateFeedback,
		}
	}
	s.logger.Error().Err(err).Str("operation", op).Msg("Failed to store feedback")
	return storageError(op, err)
}

func average(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
