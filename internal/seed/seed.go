package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/volunteerhub/internal/app/models"
	appRepos "github.com/yigit/volunteerhub/internal/app/repositories"
	"github.com/yigit/volunteerhub/internal/config"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/auth"
)

// EnsureAdmin creates the default administrator described by cfg unless an
// account with that email already exists. It reports whether a user was created.
func EnsureAdmin(ctx context.Context, users appRepos.UserStore, cfg config.SeedConfig, lgr zerolog.Logger) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		lgr.Info().Msg("No seed admin configured, skipping default data")
		return false, nil
	}

	lgr.Info().Str("email", email).Msg("Checking/Creating default admin user...")

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		lgr.Info().Int64("userID", existing.ID).Msg("Admin user already exists, skipping creation")
		return false, nil
	case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return false, fmt.Errorf("looking up admin user: %w", err)
	}

	hashedPassword, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return false, err
	}

	now := time.Now()
	admin := &appModels.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: "System",
		LastName:  "Administrator",
		RoleType:  appModels.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			// Created concurrently by another instance
			return false, nil
		}
		lgr.Error().Err(err).Msg("Error creating admin user")
		return false, fmt.Errorf("creating admin user: %w", err)
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return true, nil
}
