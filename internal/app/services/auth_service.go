package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/app/repositories"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/auth"
)

// AuthService handles registration, login and the current user's profile
type AuthService struct {
	userRepo   repositories.UserStore
	orgRepo    repositories.OrganizationStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserStore,
	orgRepo repositories.OrganizationStore,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		orgRepo:    orgRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// validatePassword requires at least one letter and one digit on top of the
// length checked by request binding
func validatePassword(password string) error {
	hasLetter, hasDigit := false, false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if len(password) < 8 || !hasLetter || !hasDigit {
		return apperrors.NewValidationError(map[string]string{
			"password": "Password must be at least 8 characters and contain a letter and a digit",
		})
	}
	return nil
}

// Register creates a volunteer account, or an organization account together
// with its organization and owner membership, and logs the new user in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.RoleType != models.RoleVolunteer && req.RoleType != models.RoleOrganization {
		return nil, apperrors.NewValidationError(map[string]string{"roleType": "Role must be VOLUNTEER or ORGANIZATION"})
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
		RoleType:  req.RoleType,
		IsActive:  true,
	}

	var orgs []*models.Organization
	if req.RoleType == models.RoleOrganization {
		name := strings.TrimSpace(req.OrganizationName)
		if name == "" {
			return nil, apperrors.NewValidationError(map[string]string{"organizationName": "Organization name is required"})
		}
		org := &models.Organization{
			Name:        name,
			Description: strings.TrimSpace(req.OrganizationDescription),
			Email:       user.Email,
			Website:     req.OrganizationWebsite,
		}
		err = s.orgRepo.CreateWithOwner(ctx, user, org)
		orgs = append(orgs, org)
	} else {
		err = s.userRepo.Create(ctx, user)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "an account with this email already exists").
				WithCode("EMAIL_ALREADY_EXISTS")
		}
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to register user")
		return nil, storageError("register user", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("roleType", string(user.RoleType)).Msg("User registered")
	return s.authResponse(user, orgs)
}

// Login checks credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("Failed to load user for login")
		return nil, storageError("load user", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.NewForbiddenError("this account has been deactivated")
	}
	s.upgradePasswordHash(ctx, user.ID, user.Password, req.Password)

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login time")
	}

	var orgs []*models.Organization
	if user.RoleType == models.RoleOrganization {
		orgs, err = s.orgRepo.ListByMember(ctx, user.ID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to list organizations at login")
		}
	}

	return s.authResponse(user, orgs)
}

// GetProfile returns the current user with the organizations they manage
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storageError("load user", err)
	}

	orgs, err := s.orgRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, storageError("list organizations", err)
	}

	resp := &dto.AuthResponse{User: dto.NewUserResponse(user)}
	for _, org := range orgs {
		resp.Organizations = append(resp.Organizations, dto.NewOrganizationResponse(org))
	}
	return resp, nil
}

func (s *AuthService) authResponse(user *models.User, orgs []*models.Organization) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate access token")
		return nil, err
	}

	resp := &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		User: dto.NewUserResponse(user),
	}
	for _, org := range orgs {
		resp.Organizations = append(resp.Organizations, dto.NewOrganizationResponse(org))
	}
	return resp, nil
}

// upgradePasswordHash re-hashes a password stored with an older bcrypt cost.
// Failures only cost a log line; the login itself already succeeded.
func (s *AuthService) upgradePasswordHash(ctx context.Context, userID int64, hash, plain string) {
	if !auth.NeedsRehash(hash) {
		return
	}
	newHash, err := auth.HashPassword(plain)
	if err == nil {
		err = s.userRepo.UpdatePassword(ctx, userID, newHash)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to upgrade password hash")
		return
	}
	s.logger.Info().Int64("userID", userID).Msg("Password hash upgraded")
}
