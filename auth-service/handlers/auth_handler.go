package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-backend/auth-service/services"
	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/utils/response"
)

// Sessions is the session authority used by AuthHandler.
type Sessions interface {
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (string, error)
	Logout(ctx context.Context, refresh string) error
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

var (
	loginStatus = apperr.StatusTable{
		apperr.Validation:         http.StatusBadRequest,
		apperr.InvalidCredentials: http.StatusBadRequest,
		apperr.UserNotFound:       http.StatusNotFound,
		apperr.UserInactive:       http.StatusForbidden,
	}
	refreshStatus = apperr.StatusTable{
		apperr.MissingToken:   http.StatusBadRequest,
		apperr.TokenExpired:   http.StatusUnauthorized,
		apperr.TokenInvalid:   http.StatusUnauthorized,
		apperr.WrongTokenType: http.StatusUnauthorized,
		apperr.TokenRevoked:   http.StatusUnauthorized,
		apperr.UserNotFound:   http.StatusUnauthorized,
		apperr.UserInactive:   http.StatusForbidden,
	}
	logoutStatus = apperr.StatusTable{
		apperr.MissingToken: http.StatusBadRequest,
		apperr.TokenInvalid: http.StatusBadRequest,
	}
	registerStatus = apperr.StatusTable{
		apperr.Validation:    http.StatusBadRequest,
		apperr.UsernameTaken: http.StatusBadRequest,
	}
)

type AuthHandler struct {
	sessions Sessions
	log      zerolog.Logger
}

func NewAuthHandler(sessions Sessions, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, log: log}
}

type LoginRequest struct {
	Username string `json:"username" example:"testuser"`
	Password string `json:"password" example:"Testpassword123"`
}

type RegisterRequest struct {
	Username  string `json:"username" example:"waiter1"`
	Password  string `json:"password" example:"securepassword123"`
	Email     string `json:"email" example:"waiter1@example.com"`
	FirstName string `json:"first_name" example:"Ana"`
	LastName  string `json:"last_name" example:"García"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

// Login
// @Summary User login
// @Description Authenticate with username and password and receive an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} services.TokenPair
// @Failure 400 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "User inactive"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 429 {object} map[string]string "Too many login attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !response.BindOptionalJSON(c, &req) {
		return
	}

	pair, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, loginStatus, err, h.log)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Register
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param register body RegisterRequest true "Account data"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !response.BindOptionalJSON(c, &req) {
		return
	}

	_, err := h.sessions.Register(c.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		response.Error(c, registerStatus, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": "User created"})
}

// Refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token. The refresh token is not rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "Refresh token"
// @Success 200 {object} RefreshResponse
// @Failure 400 {object} map[string]string "Refresh token is required"
// @Failure 401 {object} map[string]string "Expired, invalid or revoked token"
// @Failure 403 {object} map[string]string "User inactive"
// @Router /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !response.BindOptionalJSON(c, &req) {
		return
	}

	access, err := h.sessions.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		response.Error(c, refreshStatus, err, h.log)
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{Access: access})
}

// Logout
// @Summary Logout
// @Description Revoke a refresh token. Revoking an already revoked token succeeds.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if !response.BindOptionalJSON(c, &req) {
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.Refresh); err != nil {
		response.Error(c, logoutStatus, err, h.log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": "User logged out"})
}
