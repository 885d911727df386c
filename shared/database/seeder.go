package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/logger"
	utils "restaurant-backend/shared/utils/auth"
)

// SuperAdmin is the account created by SeedSuperAdmin.
type SuperAdmin struct {
	Username string
	Email    string
	Password string
}

// SeedSuperAdmin creates an active staff superuser unless the username is already taken.
// It reports whether a user was created.
func SeedSuperAdmin(ctx context.Context, users repositories.UserRepository, hasher utils.PasswordHasher,
	admin SuperAdmin, log zerolog.Logger) (bool, error) {
	if err := utils.ValidateUsername(admin.Username); err != nil {
		return false, apperr.New(apperr.Validation, err.Error())
	}
	if err := utils.ValidatePassword(admin.Password); err != nil {
		return false, apperr.New(apperr.Validation, err.Error())
	}

	exists, err := users.UsernameExists(ctx, admin.Username)
	if err != nil {
		return false, err
	}
	if exists {
		log.Info().Str("username", admin.Username).Msg("super admin already exists")
		return false, nil
	}

	hash, err := hasher.Hash(admin.Password)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "hash password", err)
	}

	user := &models.User{
		Username:    admin.Username,
		Password:    hash,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
		DateJoined:  time.Now().UTC(),
	}
	if admin.Email != "" {
		if err := utils.ValidateEmail(admin.Email); err != nil {
			return false, apperr.New(apperr.Validation, err.Error())
		}
		email := admin.Email
		user.Email = &email
	}

	if err := users.Create(ctx, user); err != nil {
		return false, err
	}

	log.Info().Int64(logger.FieldUserID, user.ID).Str("username", user.Username).Msg("super admin created")
	return true, nil
}
