package repositories

import (
	"context"

	"github.com/yigit/volunteerhub/internal/app/models"
)

// OpportunityFilter narrows an opportunity listing on persisted columns.
// Derived status is not a column and is filtered by the service.
type OpportunityFilter struct {
	OrganizationID *int64
	Mode           *models.OpportunityMode
	DateType       *models.DateType
	City           *string
	Search         *string
}

// OpportunityStore defines persistence for opportunities
type OpportunityStore interface {
	Create(ctx context.Context, opp *models.Opportunity) error
	GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	Update(ctx context.Context, opp *models.Opportunity) error
	SetStatus(ctx context.Context, id int64, status models.ManualStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter OpportunityFilter) ([]*models.Opportunity, error)
}

// ApplicationMutation changes an application read under a row lock
type ApplicationMutation func(app *models.Application) error

// ApplicationStore defines persistence for applications. Create must reject a
// second application for the same (volunteer, opportunity) pair with
// apperrors.ErrDuplicateApplication, and Mutate must run fn against the current
// stored row atomically.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByVolunteerAndOpportunity(ctx context.Context, volunteerID, opportunityID int64) (*models.Application, error)
	ListByOpportunity(ctx context.Context, opportunityID int64, status *models.ApplicationStatus) ([]*models.Application, error)
	ListByVolunteer(ctx context.Context, volunteerID int64) ([]*models.Application, error)
	CountByStatus(ctx context.Context, opportunityID int64, status models.ApplicationStatus) (int, error)
	Mutate(ctx context.Context, id int64, fn ApplicationMutation) (*models.Application, error)
}

// FeedbackStore defines persistence for feedback. Duplicate submissions
// fail with apperrors.ErrDuplicateFeedback.
type FeedbackStore interface {
	CreateOpportunityFeedback(ctx context.Context, fb *models.OpportunityFeedback) error
	CreateVolunteerFeedback(ctx context.Context, fb *models.VolunteerFeedback) error
	ListOpportunityFeedback(ctx context.Context, opportunityID int64) ([]*models.OpportunityFeedback, error)
	ListVolunteerFeedback(ctx context.Context, rateeID int64) ([]*models.VolunteerFeedback, error)
}

// UserStore defines persistence for user accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// OrganizationStore defines persistence for organizations and their members
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization, ownerID int64) error
	// CreateWithOwner inserts a new user account and its organization atomically
	CreateWithOwner(ctx context.Context, owner *models.User, org *models.Organization) error
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	IsMember(ctx context.Context, organizationID, userID int64) (bool, error)
	AddMember(ctx context.Context, member *models.OrganizationMember) error
	ListByMember(ctx context.Context, userID int64) ([]*models.Organization, error)
}
