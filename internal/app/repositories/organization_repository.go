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
)

// OrganizationRepository handles organizations and their members
type OrganizationRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(database *db.PostgresDB) *OrganizationRepository {
	return &OrganizationRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *OrganizationRepository) insert(ctx context.Context, q db.Querier, org *models.Organization, ownerID int64) error {
	now := time.Now()
	org.CreatedBy = ownerID
	sql, args, err := r.sb.Insert("organizations").
		Columns("name", "description", "email", "website", "created_by", "created_at", "updated_at").
		Values(org.Name, org.Description, org.Email, org.Website, ownerID, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating organization: %w", err)
	}

	return r.insertMember(ctx, q, &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         ownerID,
		Role:           models.MemberRoleOwner,
		JoinedAt:       now,
	})
}

func (r *OrganizationRepository) insertMember(ctx context.Context, q db.Querier, member *models.OrganizationMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	sql, args, err := r.sb.Insert("organization_members").
		Columns("organization_id", "user_id", "role", "joined_at").
		Values(member.OrganizationID, member.UserID, member.Role, member.JoinedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsUniqueViolation(err):
			return apperrors.NewConflictError("user is already a member of this organization")
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrOrganizationNotFound
		}
		return fmt.Errorf("error adding organization member: %w", err)
	}
	return nil
}

// Create inserts org owned by an existing user and grants the owner membership
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization, ownerID int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return r.insert(ctx, tx, org, ownerID)
	})
}

// CreateWithOwner registers a new organization account in one transaction
func (r *OrganizationRepository) CreateWithOwner(ctx context.Context, owner *models.User, org *models.Organization) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertUser(ctx, tx, owner); err != nil {
			return err
		}
		return r.insert(ctx, tx, org, owner.ID)
	})
}

// GetByID returns apperrors.ErrOrganizationNotFound when no row matches
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	sql, args, err := r.sb.Select("id", "name", "description", "email", "website", "created_by", "created_at", "updated_at").
		From("organizations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var org models.Organization
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&org.ID, &org.Name, &org.Description, &org.Email, &org.Website, &org.CreatedBy, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("error getting organization: %w", err)
	}
	return &org, nil
}

// IsMember reports whether the user holds any membership in the organization
func (r *OrganizationRepository) IsMember(ctx context.Context, organizationID, userID int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organization_members WHERE organization_id = $1 AND user_id = $2)`,
		organizationID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking organization membership: %w", err)
	}
	return exists, nil
}

// AddMember grants a user manage-access over an organization
func (r *OrganizationRepository) AddMember(ctx context.Context, member *models.OrganizationMember) error {
	return r.insertMember(ctx, r.db.Pool, member)
}

// ListByMember returns the organizations a user belongs to
func (r *OrganizationRepository) ListByMember(ctx context.Context, userID int64) ([]*models.Organization, error) {
	sql, args, err := r.sb.Select("o.id", "o.name", "o.description", "o.email", "o.website", "o.created_by", "o.created_at", "o.updated_at").
		From("organizations o").
		Join("organization_members m ON m.organization_id = o.id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("o.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Description, &org.Email, &org.Website,
			&org.CreatedBy, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning organization row: %w", err)
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organization rows: %w", err)
	}
	return orgs, nil
}
