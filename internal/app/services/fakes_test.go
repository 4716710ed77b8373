package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/volunteerhub/internal/app/auth"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/repositories"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/email"
)

var errStoreDown = errors.New("connection refused")

type fakeOpportunityStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.Opportunity
	err    error
}

func newFakeOpportunityStore() *fakeOpportunityStore {
	return &fakeOpportunityStore{items: make(map[int64]*models.Opportunity)}
}

func (f *fakeOpportunityStore) put(opp *models.Opportunity) *models.Opportunity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if opp.ID == 0 {
		f.nextID++
		opp.ID = f.nextID
	} else if opp.ID > f.nextID {
		f.nextID = opp.ID
	}
	if opp.Status == "" {
		opp.Status = models.ManualStatusPublished
	}
	cp := *opp
	f.items[opp.ID] = &cp
	return opp
}

func (f *fakeOpportunityStore) Create(_ context.Context, opp *models.Opportunity) error {
	if f.err != nil {
		return f.err
	}
	f.put(opp)
	return nil
}

func (f *fakeOpportunityStore) GetByID(_ context.Context, id int64) (*models.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	opp, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrOpportunityNotFound
	}
	cp := *opp
	return &cp, nil
}

func (f *fakeOpportunityStore) Update(_ context.Context, opp *models.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[opp.ID]; !ok {
		return apperrors.ErrOpportunityNotFound
	}
	cp := *opp
	f.items[opp.ID] = &cp
	return nil
}

func (f *fakeOpportunityStore) SetStatus(_ context.Context, id int64, status models.ManualStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	opp, ok := f.items[id]
	if !ok {
		return apperrors.ErrOpportunityNotFound
	}
	opp.Status = status
	return nil
}

func (f *fakeOpportunityStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperrors.ErrOpportunityNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeOpportunityStore) List(_ context.Context, filter repositories.OpportunityFilter) ([]*models.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Opportunity
	for _, opp := range f.items {
		if filter.OrganizationID != nil && opp.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.Mode != nil && opp.Mode != *filter.Mode {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(opp.Title), strings.ToLower(*filter.Search)) {
			continue
		}
		cp := *opp
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeApplicationStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.Application
	err    error
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{items: make(map[int64]*models.Application)}
}

func (f *fakeApplicationStore) put(app *models.Application) *models.Application {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	app.ID = f.nextID
	cp := *app
	f.items[app.ID] = &cp
	return app
}

func (f *fakeApplicationStore) Create(_ context.Context, app *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.items {
		if existing.VolunteerID == app.VolunteerID && existing.OpportunityID == app.OpportunityID {
			return apperrors.ErrDuplicateApplication
		}
	}
	f.nextID++
	app.ID = f.nextID
	cp := *app
	f.items[app.ID] = &cp
	return nil
}

func (f *fakeApplicationStore) GetByID(_ context.Context, id int64) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	app, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (f *fakeApplicationStore) GetByVolunteerAndOpportunity(_ context.Context, volunteerID, opportunityID int64) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, app := range f.items {
		if app.VolunteerID == volunteerID && app.OpportunityID == opportunityID {
			cp := *app
			return &cp, nil
		}
	}
	return nil, apperrors.ErrApplicationNotFound
}

func (f *fakeApplicationStore) ListByOpportunity(_ context.Context, opportunityID int64, status *models.ApplicationStatus) ([]*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Application
	for _, app := range f.items {
		if app.OpportunityID != opportunityID || (status != nil && app.Status != *status) {
			continue
		}
		cp := *app
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeApplicationStore) ListByVolunteer(_ context.Context, volunteerID int64) ([]*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Application
	for _, app := range f.items {
		if app.VolunteerID == volunteerID {
			cp := *app
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeApplicationStore) CountByStatus(_ context.Context, opportunityID int64, status models.ApplicationStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, app := range f.items {
		if app.OpportunityID == opportunityID && app.Status == status {
			n++
		}
	}
	return n, nil
}

// Mutate holds the store lock for the whole read-modify-write, like a row lock
func (f *fakeApplicationStore) Mutate(_ context.Context, id int64, fn repositories.ApplicationMutation) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	stored, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	cp := *stored
	if err := fn(&cp); err != nil {
		return nil, err
	}
	f.items[id] = &cp
	out := cp
	return &out, nil
}

type fakeFeedbackStore struct {
	mu          sync.Mutex
	opportunity []*models.OpportunityFeedback
	volunteer   []*models.VolunteerFeedback
}

func (f *fakeFeedbackStore) CreateOpportunityFeedback(_ context.Context, fb *models.OpportunityFeedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.opportunity {
		if existing.VolunteerID == fb.VolunteerID && existing.OpportunityID == fb.OpportunityID {
			return apperrors.ErrDuplicateFeedback
		}
	}
	fb.ID = int64(len(f.opportunity) + 1)
	f.opportunity = append(f.opportunity, fb)
	return nil
}

func (f *fakeFeedbackStore) CreateVolunteerFeedback(_ context.Context, fb *models.VolunteerFeedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.volunteer {
		if existing.RaterID == fb.RaterID && existing.RateeID == fb.RateeID && existing.OpportunityID == fb.OpportunityID {
			return apperrors.ErrDuplicateFeedback
		}
	}
	fb.ID = int64(len(f.volunteer) + 1)
	f.volunteer = append(f.volunteer, fb)
	return nil
}

func (f *fakeFeedbackStore) ListOpportunityFeedback(_ context.Context, opportunityID int64) ([]*models.OpportunityFeedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.OpportunityFeedback
	for _, fb := range f.opportunity {
		if fb.OpportunityID == opportunityID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeFeedbackStore) ListVolunteerFeedback(_ context.Context, rateeID int64) ([]*models.VolunteerFeedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.VolunteerFeedback
	for _, fb := range f.volunteer {
		if fb.RateeID == rateeID {
			out = append(out, fb)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked(user)
}

func (f *fakeUserStore) createLocked(user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

type fakeOrganizationStore struct {
	mu      sync.Mutex
	users   *fakeUserStore
	nextID  int64
	orgs    map[int64]*models.Organization
	members map[int64]map[int64]models.MemberRole
	err     error
}

func newFakeOrganizationStore(users *fakeUserStore) *fakeOrganizationStore {
	return &fakeOrganizationStore{
		users:   users,
		orgs:    make(map[int64]*models.Organization),
		members: make(map[int64]map[int64]models.MemberRole),
	}
}

func (f *fakeOrganizationStore) Create(_ context.Context, org *models.Organization, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	org.ID = f.nextID
	org.CreatedBy = ownerID
	cp := *org
	f.orgs[org.ID] = &cp
	f.members[org.ID] = map[int64]models.MemberRole{ownerID: models.MemberRoleOwner}
	return nil
}

func (f *fakeOrganizationStore) CreateWithOwner(ctx context.Context, owner *models.User, org *models.Organization) error {
	if err := f.users.Create(ctx, owner); err != nil {
		return err
	}
	return f.Create(ctx, org, owner.ID)
}

func (f *fakeOrganizationStore) GetByID(_ context.Context, id int64) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[id]
	if !ok {
		return nil, apperrors.ErrOrganizationNotFound
	}
	cp := *org
	return &cp, nil
}

func (f *fakeOrganizationStore) IsMember(_ context.Context, organizationID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.members[organizationID][userID]
	return ok, nil
}

func (f *fakeOrganizationStore) AddMember(_ context.Context, member *models.OrganizationMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[member.OrganizationID] == nil {
		f.members[member.OrganizationID] = make(map[int64]models.MemberRole)
	}
	f.members[member.OrganizationID][member.UserID] = member.Role
	return nil
}

func (f *fakeOrganizationStore) ListByMember(_ context.Context, userID int64) ([]*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Organization
	for orgID, members := range f.members {
		if _, ok := members[userID]; ok {
			if org, found := f.orgs[orgID]; found {
				cp := *org
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []email.DecisionMessage
	err  error
}

func (f *fakeNotifier) SendApplicationDecision(_ context.Context, msg email.DecisionMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

// testEnv wires every service against in-memory stores with a fixed clock
type testEnv struct {
	now      time.Time
	opps     *fakeOpportunityStore
	apps     *fakeApplicationStore
	feedback *fakeFeedbackStore
	users    *fakeUserStore
	orgs     *fakeOrganizationStore
	notifier *fakeNotifier
	authz    *auth.AuthorizationService

	opportunities *opportunityServiceImpl
	applications  *applicationServiceImpl
	feedbackSvc   *feedbackServiceImpl
}

// Fixture identities
const (
	orgID        int64 = 1
	managerID    int64 = 10
	otherOrgID   int64 = 2
	outsiderID   int64 = 20
	adminID      int64 = 99
	volunteerAID int64 = 100
	volunteerBID int64 = 101
	volunteerCID int64 = 102
)

var (
	manager    = models.Actor{ID: managerID, Role: models.RoleOrganization}
	outsider   = models.Actor{ID: outsiderID, Role: models.RoleOrganization}
	admin      = models.Actor{ID: adminID, Role: models.RoleAdmin}
	volunteerA = models.Actor{ID: volunteerAID, Role: models.RoleVolunteer}
	volunteerB = models.Actor{ID: volunteerBID, Role: models.RoleVolunteer}
	volunteerC = models.Actor{ID: volunteerCID, Role: models.RoleVolunteer}
)

func newTestEnv() *testEnv {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	users := newFakeUserStore()
	for _, u := range []*models.User{
		{ID: volunteerAID, Email: "a@example.org", FirstName: "Ada", RoleType: models.RoleVolunteer, IsActive: true},
		{ID: volunteerBID, Email: "b@example.org", FirstName: "Ben", RoleType: models.RoleVolunteer, IsActive: true},
		{ID: volunteerCID, Email: "c@example.org", FirstName: "Cleo", RoleType: models.RoleVolunteer, IsActive: true},
	} {
		users.users[u.ID] = u
	}
	users.nextID = 1000

	orgs := newFakeOrganizationStore(users)
	orgs.orgs[orgID] = &models.Organization{ID: orgID, Name: "Green Shores", CreatedBy: managerID}
	orgs.members[orgID] = map[int64]models.MemberRole{managerID: models.MemberRoleOwner}
	orgs.orgs[otherOrgID] = &models.Organization{ID: otherOrgID, Name: "Food Friends", CreatedBy: outsiderID}
	orgs.members[otherOrgID] = map[int64]models.MemberRole{outsiderID: models.MemberRoleOwner}
	orgs.nextID = otherOrgID

	env := &testEnv{
		now:      now,
		opps:     newFakeOpportunityStore(),
		apps:     newFakeApplicationStore(),
		feedback: &fakeFeedbackStore{},
		users:    users,
		orgs:     orgs,
		notifier: &fakeNotifier{},
	}
	env.authz = auth.NewAuthorizationService(orgs)

	env.opportunities = NewOpportunityService(env.opps, env.apps, env.authz, zerolog.Nop()).(*opportunityServiceImpl)
	env.opportunities.now = clock
	env.applications = NewApplicationService(env.apps, env.opps, users, env.authz, env.notifier, zerolog.Nop()).(*applicationServiceImpl)
	env.applications.now = clock
	env.feedbackSvc = NewFeedbackService(env.feedback, env.apps, env.opps, zerolog.Nop()).(*feedbackServiceImpl)
	env.feedbackSvc.now = clock
	return env
}

func (e *testEnv) day(offset int) *time.Time {
	d := time.Date(e.now.Year(), e.now.Month(), e.now.Day()+offset, 0, 0, 0, 0, time.UTC)
	return &d
}

// seedOpportunity stores a single-day opportunity of orgID created by the manager
func (e *testEnv) seedOpportunity(startOffset int) *models.Opportunity {
	return e.opps.put(&models.Opportunity{
		OrganizationID: orgID,
		CreatedBy:      managerID,
		Title:          "Beach cleanup",
		Mode:           models.ModeOnsite,
		DateType:       models.DateTypeSingleDay,
		StartDate:      e.day(startOffset),
		MaxVolunteers:  10,
	})
}

// seedApplication stores an application directly in the given state
func (e *testEnv) seedApplication(volunteerID, opportunityID int64, status models.ApplicationStatus, attended bool) *models.Application {
	return e.apps.put(&models.Application{
		VolunteerID:   volunteerID,
		OpportunityID: opportunityID,
		Status:        status,
		HasAttended:   attended,
		CreatedAt:     e.now,
		UpdatedAt:     e.now,
	})
}
