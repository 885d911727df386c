package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/logger"
	utils "restaurant-backend/shared/utils/auth"
	"restaurant-backend/shared/utils/query"
)

// UserInput carries the writable fields of a user.
type UserInput struct {
	Username    string
	Password    string
	Email       *string
	FirstName   string
	LastName    string
	IsActive    *bool
	IsStaff     bool
	IsSuperuser bool
}

// UserService manages accounts for the /api/user endpoints.
type UserService struct {
	users  repositories.UserRepository
	hasher utils.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(users repositories.UserRepository, hasher utils.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		log:    logger.Component(log, "users"),
		now:    time.Now,
	}
}

func (s *UserService) List(ctx context.Context, params query.Params) ([]models.User, int64, error) {
	return s.users.List(ctx, params)
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	user := &models.User{
		Username:    in.Username,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		IsActive:    in.IsActive == nil || *in.IsActive,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
	}
	if err := CreateUser(ctx, s.users, s.hasher, user, in.Password, s.now()); err != nil {
		return nil, err
	}
	s.log.Info().Int64(logger.FieldUserID, user.ID).Msg("user created")
	return user, nil
}

// Update replaces the profile and flags of a user. A non-empty password is not
// accepted here; accounts change passwords through their own flow.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Password != "" {
		return nil, apperr.New(apperr.Validation, "password cannot be changed through this endpoint")
	}
	if err := utils.ValidateUsername(in.Username); err != nil {
		return nil, apperr.New(apperr.Validation, err.Error())
	}
	if in.Email != nil {
		if err := utils.ValidateEmail(*in.Email); err != nil {
			return nil, apperr.New(apperr.Validation, err.Error())
		}
	}

	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.IsStaff = in.IsStaff
	user.IsSuperuser = in.IsSuperuser

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Int64(logger.FieldUserID, user.ID).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64(logger.FieldUserID, id).Msg("user deleted")
	return nil
}
