package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/utils/query"
)

// UserRepository is the credential store used by the session authority and the gate.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params query.Params) ([]models.User, int64, error)
}

// GormUserRepository implements UserRepository on postgres.
type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, userLookupError(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, userLookupError(err)
	}
	return &user, nil
}

func (r *GormUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "count users", err)
	}
	return count > 0, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.UsernameTaken, "Username already exists")
		}
		return apperr.Wrap(apperr.Internal, "create user", err)
	}
	return nil
}

// Update writes the profile and flag columns. The password hash and date_joined are left alone.
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(user).
		Select("username", "email", "first_name", "last_name", "is_active", "is_staff", "is_superuser").
		Updates(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.UsernameTaken, "Username already exists")
		}
		return apperr.Wrap(apperr.Internal, "update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.UserNotFound, "User not found")
	}
	return nil
}

func (r *GormUserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "update last_login", err)
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.UserNotFound, "User not found")
	}
	return nil
}

// UserListing is what GET /api/user accepts for filtering, search and ordering.
var UserListing = query.Listing{
	Filters: map[string]query.Filter{
		"is_active":    query.Bool("is_active"),
		"is_staff":     query.Bool("is_staff"),
		"is_superuser": query.Bool("is_superuser"),
	},
	Ordering: map[string]string{
		"id":          "id",
		"username":    "username",
		"date_joined": "date_joined",
		"last_login":  "last_login",
	},
	Search:       []string{"username", "email", "first_name", "last_name"},
	DefaultOrder: "id ASC",
}

// List returns one page of users matching params, with the total match count.
func (r *GormUserRepository) List(ctx context.Context, params query.Params) ([]models.User, int64, error) {
	matching := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).Scopes(UserListing.Where(params))
	}

	var total int64
	if err := matching().Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "count users", err)
	}

	var users []models.User
	if err := matching().Scopes(UserListing.Page(params)).Find(&users).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "list users", err)
	}
	return users, total, nil
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.UserNotFound, "User not found")
	}
	return apperr.Wrap(apperr.Internal, "lookup user", err)
}
