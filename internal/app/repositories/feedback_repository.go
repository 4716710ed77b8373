package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/db"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/dberrors"
)

// FeedbackRepository handles opportunity and volunteer feedback
type FeedbackRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(database *db.PostgresDB) *FeedbackRepository {
	return &FeedbackRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateOpportunityFeedback stores a participant's rating of an opportunity
func (r *FeedbackRepository) CreateOpportunityFeedback(ctx context.Context, fb *models.OpportunityFeedback) error {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	sql, args, err := r.sb.Insert("opportunity_feedback").
		Columns("opportunity_id", "volunteer_id", "rating", "comment", "testimonial", "image_urls", "created_at").
		Values(fb.OpportunityID, fb.VolunteerID, fb.Rating, fb.Comment, fb.Testimonial, nonNil(fb.ImageURLs), fb.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&fb.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateFeedback
		}
		return fmt.Errorf("error creating opportunity feedback: %w", err)
	}
	return nil
}

// CreateVolunteerFeedback stores one participant's rating of another
func (r *FeedbackRepository) CreateVolunteerFeedback(ctx context.Context, fb *models.VolunteerFeedback) error {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	sql, args, err := r.sb.Insert("volunteer_feedback").
		Columns("opportunity_id", "rater_id", "ratee_id", "rating", "comment", "created_at").
		Values(fb.OpportunityID, fb.RaterID, fb.RateeID, fb.Rating, fb.Comment, fb.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&fb.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateFeedback
		}
		return fmt.Errorf("error creating volunteer feedback: %w", err)
	}
	return nil
}

// ListOpportunityFeedback returns the feedback of an opportunity, newest first
func (r *FeedbackRepository) ListOpportunityFeedback(ctx context.Context, opportunityID int64) ([]*models.OpportunityFeedback, error) {
	sql, args, err := r.sb.Select("id", "opportunity_id", "volunteer_id", "rating", "comment", "testimonial", "image_urls", "created_at").
		From("opportunity_feedback").
		Where(squirrel.Eq{"opportunity_id": opportunityID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing opportunity feedback: %w", err)
	}
	defer rows.Close()

	var items []*models.OpportunityFeedback
	for rows.Next() {
		var fb models.OpportunityFeedback
		if err := rows.Scan(&fb.ID, &fb.OpportunityID, &fb.VolunteerID, &fb.Rating, &fb.Comment,
			&fb.Testimonial, &fb.ImageURLs, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		items = append(items, &fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return items, nil
}

// ListVolunteerFeedback returns the ratings a volunteer received, newest first
func (r *FeedbackRepository) ListVolunteerFeedback(ctx context.Context, rateeID int64) ([]*models.VolunteerFeedback, error) {
	sql, args, err := r.sb.Select("id", "opportunity_id", "rater_id", "ratee_id", "rating", "comment", "created_at").
		From("volunteer_feedback").
		Where(squirrel.Eq{"ratee_id": rateeID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing volunteer feedback: %w", err)
	}
	defer rows.Close()

	var items []*models.VolunteerFeedback
	for rows.Next() {
		var fb models.VolunteerFeedback
		if err := rows.Scan(&fb.ID, &fb.OpportunityID, &fb.RaterID, &fb.RateeID, &fb.Rating,
			&fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		items = append(items, &fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return items, nil
}
