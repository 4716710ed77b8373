package repositories

import (
	"github.com/yigit/volunteerhub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	OrganizationRepository *OrganizationRepository
	OpportunityRepository  *OpportunityRepository
	ApplicationRepository  *ApplicationRepository
	FeedbackRepository     *FeedbackRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(database),
		OrganizationRepository: NewOrganizationRepository(database),
		OpportunityRepository:  NewOpportunityRepository(database),
		ApplicationRepository:  NewApplicationRepository(database),
		FeedbackRepository:     NewFeedbackRepository(database),
	}
}

var (
	_ UserStore         = (*UserRepository)(nil)
	_ OrganizationStore = (*OrganizationRepository)(nil)
	_ OpportunityStore  = (*OpportunityRepository)(nil)
	_ ApplicationStore  = (*ApplicationRepository)(nil)
	_ FeedbackStore     = (*FeedbackRepository)(nil)
)
