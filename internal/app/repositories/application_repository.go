package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/db"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/dberrors"
	"github.com/yigit/volunteerhub/internal/pkg/logger"
)

const applicationUniqueConstraint = "applications_volunteer_opportunity_key"

var applicationColumns = []string{
	"a.id", "a.volunteer_id", "a.opportunity_id", "a.status", "a.motivation",
	"a.has_attended", "a.approved_by", "a.approved_at", "a.created_at", "a.updated_at",
}

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(database *db.PostgresDB) *ApplicationRepository {
	return &ApplicationRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID, &a.VolunteerID, &a.OpportunityID, &a.Status, &a.Motivation,
		&a.HasAttended, &a.ApprovedBy, &a.ApprovedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a pending application. The unique (volunteer_id, opportunity_id)
// constraint turns a concurrent second apply into apperrors.ErrDuplicateApplication.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	sql, args, err := r.sb.Insert("applications").
		Columns("volunteer_id", "opportunity_id", "status", "motivation", "has_attended", "created_at", "updated_at").
		Values(app.VolunteerID, app.OpportunityID, app.Status, app.Motivation, app.HasAttended, app.CreatedAt, app.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&app.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, applicationUniqueConstraint) {
			logger.Warn().
				Int64("volunteerID", app.VolunteerID).
				Int64("opportunityID", app.OpportunityID).
				Msg("Duplicate application rejected by constraint")
			return apperrors.ErrDuplicateApplication
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrOpportunityNotFound
		}
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) getOne(ctx context.Context, q db.Querier, where squirrel.Sqlizer, suffix string) (*models.Application, error) {
	query := r.sb.Select(applicationColumns...).
		From("applications a").
		Where(where)
	if suffix != "" {
		query = query.Suffix(suffix)
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	app, err := scanApplication(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return app, nil
}

// GetByID returns apperrors.ErrApplicationNotFound when no row matches
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.getOne(ctx, r.db.Pool, squirrel.Eq{"a.id": id}, "")
}

// GetByVolunteerAndOpportunity returns the single application of a volunteer to an opportunity
func (r *ApplicationRepository) GetByVolunteerAndOpportunity(ctx context.Context, volunteerID, opportunityID int64) (*models.Application, error) {
	return r.getOne(ctx, r.db.Pool, squirrel.Eq{"a.volunteer_id": volunteerID, "a.opportunity_id": opportunityID}, "")
}

// ListByOpportunity returns the applications of an opportunity with their
// volunteer, oldest first, optionally narrowed to one status
func (r *ApplicationRepository) ListByOpportunity(ctx context.Context, opportunityID int64, status *models.ApplicationStatus) ([]*models.Application, error) {
	columns := append(append([]string{}, applicationColumns...),
		"u.id", "u.email", "u.first_name", "u.last_name", "u.phone")
	query := r.sb.Select(columns...).
		From("applications a").
		Join("users u ON u.id = a.volunteer_id").
		Where(squirrel.Eq{"a.opportunity_id": opportunityID})
	if status != nil {
		query = query.Where(squirrel.Eq{"a.status": *status})
	}

	sql, args, err := query.OrderBy("a.created_at ASC", "a.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		var a models.Application
		var u models.User
		if err := rows.Scan(
			&a.ID, &a.VolunteerID, &a.OpportunityID, &a.Status, &a.Motivation,
			&a.HasAttended, &a.ApprovedBy, &a.ApprovedAt, &a.CreatedAt, &a.UpdatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone,
		); err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		u.RoleType = models.RoleVolunteer
		a.Volunteer = &u
		apps = append(apps, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, nil
}

// ListByVolunteer returns a volunteer's applications, newest first
func (r *ApplicationRepository) ListByVolunteer(ctx context.Context, volunteerID int64) ([]*models.Application, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("applications a").
		Where(squirrel.Eq{"a.volunteer_id": volunteerID}).
		OrderBy("a.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, nil
}

// CountByStatus counts the applications of an opportunity in one status
func (r *ApplicationRepository) CountByStatus(ctx context.Context, opportunityID int64, status models.ApplicationStatus) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("applications").
		Where(squirrel.Eq{"opportunity_id": opportunityID, "status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting applications: %w", err)
	}
	return count, nil
}

// Mutate locks the application row, hands the current state to fn and writes
// back the result. Concurrent deciders serialize on the lock so exactly one of
// them observes the pending state.
func (r *ApplicationRepository) Mutate(ctx context.Context, id int64, fn ApplicationMutation) (*models.Application, error) {
	var result *models.Application
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		app, err := r.getOne(ctx, tx, squirrel.Eq{"a.id": id}, "FOR UPDATE")
		if err != nil {
			return err
		}
		if err := fn(app); err != nil {
			return err
		}

		sql, args, err := r.sb.Update("applications").
			Set("status", app.Status).
			Set("has_attended", app.HasAttended).
			Set("approved_by", app.ApprovedBy).
			Set("approved_at", app.ApprovedAt).
			Set("updated_at", app.UpdatedAt).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
