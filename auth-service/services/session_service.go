package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/database/models/auth"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/logger"
	utils "restaurant-backend/shared/utils/auth"
)

// TokenCodec issues and verifies signed tokens.
type TokenCodec interface {
	Issue(userID int64, kind utils.TokenKind, now time.Time) (string, error)
	VerifyKind(token string, kind utils.TokenKind, now time.Time) (*utils.Claims, error)
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// SessionService logs users in, refreshes access tokens and revokes refresh tokens.
// Refresh tokens are not rotated: a refresh token stays usable until it expires or is logged out.
type SessionService struct {
	codec  TokenCodec
	hasher utils.PasswordHasher
	users  repositories.UserRepository
	ledger repositories.Ledger
	log    zerolog.Logger
	now    func() time.Time
}

func NewSessionService(
	codec TokenCodec,
	hasher utils.PasswordHasher,
	users repositories.UserRepository,
	ledger repositories.Ledger,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		codec:  codec,
		hasher: hasher,
		users:  users,
		ledger: ledger,
		log:    logger.Component(log, "session"),
		now:    time.Now,
	}
}

// Login checks the credentials and issues an access/refresh pair.
func (s *SessionService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if username == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "Username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(password, user.Password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			s.log.Info().Int64(logger.FieldUserID, user.ID).Msg("login rejected: bad password")
			return nil, apperr.New(apperr.InvalidCredentials, "Invalid credentials")
		}
		return nil, apperr.Wrap(apperr.Internal, "verify password", err)
	}

	if !user.IsActive {
		return nil, apperr.New(apperr.UserInactive, "User inactive")
	}

	now := s.now()
	access, err := s.codec.Issue(user.ID, utils.AccessToken, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "issue access token", err)
	}
	refresh, err := s.codec.Issue(user.ID, utils.RefreshToken, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "issue refresh token", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Int64(logger.FieldUserID, user.ID).Msg("failed to update last_login")
	}

	s.log.Info().Int64(logger.FieldUserID, user.ID).Msg("user logged in")
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *SessionService) Refresh(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", apperr.New(apperr.MissingToken, "Refresh token is required")
	}

	now := s.now()
	claims, err := s.codec.VerifyKind(refresh, utils.RefreshToken, now)
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrExpired):
		return "", apperr.Wrap(apperr.TokenExpired, "Refresh token expired", err)
	case errors.Is(err, utils.ErrWrongTokenType):
		return "", apperr.Wrap(apperr.WrongTokenType, "Token has wrong type", err)
	default:
		return "", apperr.Wrap(apperr.TokenInvalid, "Invalid token", err)
	}

	tokenID := utils.TokenID(refresh)
	revoked, err := s.ledger.IsRevoked(ctx, tokenID)
	if err != nil {
		return "", err
	}
	if revoked {
		s.log.Info().Str("token_id", tokenID).Int64(logger.FieldUserID, claims.UserID).Msg("revoked refresh token presented")
		return "", apperr.New(apperr.TokenRevoked, "Token has been revoked")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", apperr.New(apperr.UserInactive, "User inactive")
	}

	access, err := s.codec.Issue(user.ID, utils.AccessToken, now)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "issue access token", err)
	}
	return access, nil
}

// Logout revokes a refresh token. Revoking an already revoked token succeeds.
func (s *SessionService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return apperr.New(apperr.MissingToken, "Refresh token is required")
	}

	now := s.now()
	claims, err := s.codec.VerifyKind(refresh, utils.RefreshToken, now)
	if err != nil {
		return apperr.Wrap(apperr.TokenInvalid, "Token is invalid or expired", err)
	}

	tokenID := utils.TokenID(refresh)
	err = s.ledger.Record(ctx, &auth.RevokedToken{
		TokenID:   tokenID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: now,
		Reason:    "logout",
	})
	if errors.Is(err, apperr.E(apperr.AlreadyRevoked)) {
		s.log.Debug().Str("token_id", tokenID).Msg("refresh token already revoked")
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Info().Str("token_id", tokenID).Int64(logger.FieldUserID, claims.UserID).Msg("user logged out")
	return nil
}

// Register creates an active, unprivileged account.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user := &models.User{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}
	if in.Email != "" {
		email := in.Email
		user.Email = &email
	}
	if err := CreateUser(ctx, s.users, s.hasher, user, in.Password, s.now()); err != nil {
		return nil, err
	}

	s.log.Info().Int64(logger.FieldUserID, user.ID).Msg("user registered")
	return user, nil
}

// CreateUser validates user and password, hashes the password and stores the user.
func CreateUser(ctx context.Context, users repositories.UserRepository, hasher utils.PasswordHasher,
	user *models.User, password string, now time.Time) error {
	if err := utils.ValidateUsername(user.Username); err != nil {
		return apperr.New(apperr.Validation, err.Error())
	}
	if err := utils.ValidatePassword(password); err != nil {
		return apperr.New(apperr.Validation, err.Error())
	}
	if user.Email != nil {
		if err := utils.ValidateEmail(*user.Email); err != nil {
			return apperr.New(apperr.Validation, err.Error())
		}
	}

	exists, err := users.UsernameExists(ctx, user.Username)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New(apperr.UsernameTaken, "Username already exists")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "hash password", err)
	}
	user.Password = hash
	user.DateJoined = now

	return users.Create(ctx, user)
}
