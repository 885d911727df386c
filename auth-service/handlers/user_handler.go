package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-backend/auth-service/services"
	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/utils/query"
	"restaurant-backend/shared/utils/response"
)

// Users is the account management service used by UserHandler.
type Users interface {
	List(ctx context.Context, params query.Params) ([]models.User, int64, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, in services.UserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in services.UserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

var userStatus = apperr.StatusTable{
	apperr.UserNotFound:  http.StatusNotFound,
	apperr.Validation:    http.StatusBadRequest,
	apperr.UsernameTaken: http.StatusBadRequest,
}

type UserHandler struct {
	users Users
	log   zerolog.Logger
}

func NewUserHandler(users Users, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type UserRequest struct {
	Username    string  `json:"username" binding:"required"`
	Password    string  `json:"password"`
	Email       *string `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     bool    `json:"is_staff"`
	IsSuperuser bool    `json:"is_superuser"`
}

func (r UserRequest) input() services.UserInput {
	return services.UserInput{
		Username:    r.Username,
		Password:    r.Password,
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		IsActive:    r.IsActive,
		IsStaff:     r.IsStaff,
		IsSuperuser: r.IsSuperuser,
	}
}

// ListUsers
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search username, email and names"
// @Param ordering query string false "id, username, date_joined or last_login; prefix - for descending"
// @Param is_active query bool false "Filter by active flag"
// @Param is_staff query bool false "Filter by staff flag"
// @Success 200 {object} map[string]interface{}
// @Router /api/user [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := repositories.UserListing.Parse(c)

	users, total, err := h.users.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, userStatus, err, h.log)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       users,
		"pagination": query.NewPagination(params, total),
	})
}

// GetUser
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string
// @Router /api/user/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, userStatus, err, h.log)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUser
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body UserRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string
// @Router /api/user [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.input())
	if err != nil {
		response.Error(c, userStatus, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// UpdateUser
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body UserRequest true "User"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/user/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, req.input())
	if err != nil {
		response.Error(c, userStatus, err, h.log)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/user/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, userStatus, err, h.log)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return id, true
}
