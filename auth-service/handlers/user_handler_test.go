package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-backend/auth-service/services"
	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	utils "restaurant-backend/shared/utils/auth"
	"restaurant-backend/shared/utils/permission"
	"restaurant-backend/shared/utils/query"
)

type fakeUsers struct {
	byID map[int64]*models.User
}

func (f *fakeUsers) List(_ context.Context, _ query.Params) ([]models.User, int64, error) {
	out := make([]models.User, 0, len(f.byID))
	for id := int64(1); id <= int64(len(f.byID)); id++ {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.New(apperr.UserNotFound, "User not found")
	}
	return u, nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return f.Get(ctx, id)
}

func (f *fakeUsers) Create(_ context.Context, in services.UserInput) (*models.User, error) {
	if len(in.Password) < 8 {
		return nil, apperr.New(apperr.Validation, "password must be at least 8 characters long")
	}
	u := &models.User{ID: int64(len(f.byID) + 1), Username: in.Username, IsActive: true, IsStaff: in.IsStaff}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, in services.UserInput) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.New(apperr.UserNotFound, "User not found")
	}
	u.Username = in.Username
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.New(apperr.UserNotFound, "User not found")
	}
	delete(f.byID, id)
	return nil
}

func newUserRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &fakeUsers{byID: map[int64]*models.User{
		1: {ID: 1, Username: "admin", IsActive: true, IsSuperuser: true},
	}}
	codec, err := utils.NewCodec(utils.CodecConfig{Secret: "user-handler-secret"})
	require.NoError(t, err)
	token, err := codec.Issue(1, utils.AccessToken, time.Now())
	require.NoError(t, err)

	gate := permission.NewGate(codec, users, permission.DefaultPolicy(), zerolog.Nop())
	h := NewUserHandler(users, zerolog.Nop())

	r := gin.New()
	g := r.Group("/api/user", gate.Resource("user"))
	g.GET("", h.ListUsers)
	g.POST("", h.CreateUser)
	g.GET("/:id", h.GetUser)
	g.PUT("/:id", h.UpdateUser)
	g.DELETE("/:id", h.DeleteUser)
	return r, "Bearer " + token
}

func call(r http.Handler, method, path, authorization, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestUserHandler_RequiresAuthentication(t *testing.T) {
	r, _ := newUserRouter(t)

	status, body := call(r, http.MethodGet, "/api/user", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication credentials were not provided.", body["error"])
}

func TestUserHandler_CRUD(t *testing.T) {
	r, auth := newUserRouter(t)

	status, body := call(r, http.MethodPost, "/api/user", auth, `{"username":"cook","password":"longenough1","is_staff":true}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "cook", body["username"])
	assert.NotContains(t, body, "password")

	status, body = call(r, http.MethodPost, "/api/user", auth, `{"username":"cook2","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "at least 8")

	status, body = call(r, http.MethodGet, "/api/user", auth, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, body = call(r, http.MethodPut, "/api/user/2", auth, `{"username":"chef"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "chef", body["username"])

	status, _ = call(r, http.MethodDelete, "/api/user/2", auth, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = call(r, http.MethodGet, "/api/user/2", auth, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["error"])

	status, _ = call(r, http.MethodGet, "/api/user/abc", auth, "")
	assert.Equal(t, http.StatusBadRequest, status)
}
