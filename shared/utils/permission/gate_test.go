package permission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	utils "restaurant-backend/shared/utils/auth"
)

type fakeUsers struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.New(apperr.UserNotFound, "User not found")
	}
	return u, nil
}

var gateNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type gateFixture struct {
	codec  *utils.Codec
	users  *fakeUsers
	router *gin.Engine
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := utils.NewCodec(utils.CodecConfig{Secret: "gate-secret"})
	require.NoError(t, err)
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Username: "waiter", IsActive: true},
		2: {ID: 2, Username: "gone", IsActive: false},
	}}

	gate := NewGate(codec, users, DefaultPolicy(), zerolog.Nop())
	gate.now = func() time.Time { return gateNow }

	r := gin.New()
	handler := func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"principal": nil})
			return
		}
		fromCtx, _ := PrincipalFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"principal": p.Username, "ctx": fromCtx.Username})
	}
	desk := r.Group("/api/desk", gate.Resource("desk"))
	desk.GET("", handler)
	desk.POST("", handler)
	desk.GET("/:id", handler)
	order := r.Group("/api/order", gate.Resource("order"))
	order.POST("", handler)
	r.GET("/api/user", gate.Require("user", List), handler)

	return &gateFixture{codec: codec, users: users, router: r}
}

func (f *gateFixture) token(t *testing.T, userID int64, kind utils.TokenKind) string {
	t.Helper()
	token, err := f.codec.Issue(userID, kind, gateNow)
	require.NoError(t, err)
	return token
}

func (f *gateFixture) do(method, path, authorization string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, http.NoBody)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body
}

func TestGate_CreateWithoutAuthorization(t *testing.T) {
	f := newGateFixture(t)

	status, body := f.do(http.MethodPost, "/api/desk", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication credentials were not provided.", body["error"])
}

func TestGate_AnonymousReads(t *testing.T) {
	f := newGateFixture(t)

	status, body := f.do(http.MethodGet, "/api/desk", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["principal"])

	status, body = f.do(http.MethodGet, "/api/desk/3", "Bearer garbage")
	assert.Equal(t, http.StatusOK, status, "invalid token ignored on anonymous operations")
	assert.Nil(t, body["principal"])

	status, body = f.do(http.MethodGet, "/api/desk", "Bearer "+f.token(t, 1, utils.AccessToken))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "waiter", body["principal"])
}

func TestGate_AuthenticatedMutation(t *testing.T) {
	f := newGateFixture(t)

	status, body := f.do(http.MethodPost, "/api/desk", "Bearer "+f.token(t, 1, utils.AccessToken))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "waiter", body["principal"])
	assert.Equal(t, "waiter", body["ctx"])
}

func TestGate_Rejections(t *testing.T) {
	f := newGateFixture(t)
	expired, err := f.codec.Issue(1, utils.AccessToken, gateNow.Add(-2*time.Hour))
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"not bearer", "Token abc", http.StatusUnauthorized, "Authentication credentials were not provided."},
		{"garbage", "Bearer invalidtoken", http.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
		{"refresh token", "Bearer " + f.token(t, 1, utils.RefreshToken), http.StatusUnauthorized, "Token has wrong type"},
		{"deleted user", "Bearer " + f.token(t, 42, utils.AccessToken), http.StatusUnauthorized, "User not found"},
		{"inactive user", "Bearer " + f.token(t, 2, utils.AccessToken), http.StatusForbidden, "User inactive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := f.do(http.MethodPost, "/api/desk", tc.header)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestGate_PolicyOverrides(t *testing.T) {
	f := newGateFixture(t)

	status, _ := f.do(http.MethodPost, "/api/order", "")
	assert.Equal(t, http.StatusOK, status, "orders are open to anonymous callers")

	status, _ = f.do(http.MethodGet, "/api/user", "")
	assert.Equal(t, http.StatusUnauthorized, status, "users require a principal even for reads")
}

func TestGate_DatastoreFailureIs500(t *testing.T) {
	f := newGateFixture(t)
	f.users.err = apperr.Wrap(apperr.Internal, "lookup user", errors.New("connection refused"))

	status, body := f.do(http.MethodGet, "/api/desk", "Bearer "+f.token(t, 1, utils.AccessToken))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperr.GenericMessage, body["error"])
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	for _, h := range []string{"", "Bearer", "bearer abc", "Bearer a b", "Basic abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
