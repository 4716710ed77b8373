package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/db"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/dberrors"
	"github.com/yigit/volunteerhub/internal/pkg/logger"
)

var opportunityColumns = []string{
	"id", "organization_id", "created_by",
	"title", "short_summary", "description",
	"mode", "date_type", "start_date", "end_date", "start_time", "end_time",
	"address", "city", "state", "country", "osrm_link",
	"max_volunteers", "skills", "causes", "languages", "gender_preference",
	"contact_name", "contact_email", "contact_phone",
	"status", "created_at", "updated_at",
}

// OpportunityRepository handles opportunity database operations
type OpportunityRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewOpportunityRepository creates a new OpportunityRepository
func NewOpportunityRepository(database *db.PostgresDB) *OpportunityRepository {
	return &OpportunityRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanOpportunity(row pgx.Row) (*models.Opportunity, error) {
	var o models.Opportunity
	err := row.Scan(
		&o.ID, &o.OrganizationID, &o.CreatedBy,
		&o.Title, &o.ShortSummary, &o.Description,
		&o.Mode, &o.DateType, &o.StartDate, &o.EndDate, &o.StartTime, &o.EndTime,
		&o.Address, &o.City, &o.State, &o.Country, &o.OsrmLink,
		&o.MaxVolunteers, &o.Skills, &o.Causes, &o.Languages, &o.GenderPreference,
		&o.ContactName, &o.ContactEmail, &o.ContactPhone,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// Create inserts opp and fills its ID and timestamps
func (r *OpportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("opportunities").
		Columns(opportunityColumns[1:]...).
		Values(
			opp.OrganizationID, opp.CreatedBy,
			opp.Title, opp.ShortSummary, opp.Description,
			opp.Mode, opp.DateType, opp.StartDate, opp.EndDate, opp.StartTime, opp.EndTime,
			opp.Address, opp.City, opp.State, opp.Country, opp.OsrmLink,
			opp.MaxVolunteers, nonNil(opp.Skills), nonNil(opp.Causes), nonNil(opp.Languages), opp.GenderPreference,
			opp.ContactName, opp.ContactEmail, opp.ContactPhone,
			opp.Status, now, now,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&opp.ID, &opp.CreatedAt, &opp.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrOrganizationNotFound
		}
		logger.Error().Err(err).Int64("organizationID", opp.OrganizationID).Msg("Error creating opportunity")
		return fmt.Errorf("error creating opportunity: %w", err)
	}
	return nil
}

// GetByID returns apperrors.ErrOpportunityNotFound when no row matches
func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	sql, args, err := r.sb.Select(opportunityColumns...).
		From("opportunities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	opp, err := scanOpportunity(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("error getting opportunity: %w", err)
	}
	return opp, nil
}

// Update overwrites the editable columns of opp
func (r *OpportunityRepository) Update(ctx context.Context, opp *models.Opportunity) error {
	opp.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("opportunities").
		SetMap(map[string]interface{}{
			"title":             opp.Title,
			"short_summary":     opp.ShortSummary,
			"description":       opp.Description,
			"mode":              opp.Mode,
			"date_type":         opp.DateType,
			"start_date":        opp.StartDate,
			"end_date":          opp.EndDate,
			"start_time":        opp.StartTime,
			"end_time":          opp.EndTime,
			"address":           opp.Address,
			"city":              opp.City,
			"state":             opp.State,
			"country":           opp.Country,
			"osrm_link":         opp.OsrmLink,
			"max_volunteers":    opp.MaxVolunteers,
			"skills":            nonNil(opp.Skills),
			"causes":            nonNil(opp.Causes),
			"languages":         nonNil(opp.Languages),
			"gender_preference": opp.GenderPreference,
			"contact_name":      opp.ContactName,
			"contact_email":     opp.ContactEmail,
			"contact_phone":     opp.ContactPhone,
			"updated_at":        opp.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": opp.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	return r.execAffectingOne(ctx, sql, args, "updating opportunity")
}

// SetStatus records a manual status change
func (r *OpportunityRepository) SetStatus(ctx context.Context, id int64, status models.ManualStatus) error {
	sql, args, err := r.sb.Update("opportunities").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	return r.execAffectingOne(ctx, sql, args, "setting opportunity status")
}

// Delete removes the opportunity; applications and feedback cascade
func (r *OpportunityRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("opportunities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	return r.execAffectingOne(ctx, sql, args, "deleting opportunity")
}

func (r *OpportunityRepository) execAffectingOne(ctx context.Context, sql string, args []interface{}, op string) error {
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrOpportunityNotFound
	}
	return nil
}

// List returns the opportunities matching filter, soonest start first
func (r *OpportunityRepository) List(ctx context.Context, filter OpportunityFilter) ([]*models.Opportunity, error) {
	query := r.sb.Select(opportunityColumns...).From("opportunities")

	if filter.OrganizationID != nil {
		query = query.Where(squirrel.Eq{"organization_id": *filter.OrganizationID})
	}
	if filter.Mode != nil {
		query = query.Where(squirrel.Eq{"mode": *filter.Mode})
	}
	if filter.DateType != nil {
		query = query.Where(squirrel.Eq{"date_type": *filter.DateType})
	}
	if filter.City != nil && *filter.City != "" {
		query = query.Where(squirrel.ILike{"city": *filter.City})
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"short_summary": pattern},
		})
	}

	sql, args, err := query.OrderBy("start_date ASC NULLS LAST", "created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing opportunities: %w", err)
	}
	defer rows.Close()

	var opps []*models.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning opportunity row: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opportunity rows: %w", err)
	}
	return opps, nil
}
