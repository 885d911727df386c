package permission

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/logger"
	utils "restaurant-backend/shared/utils/auth"
)

// TokenVerifier is the part of the token codec the gate needs.
type TokenVerifier interface {
	VerifyKind(token string, kind utils.TokenKind, now time.Time) (*utils.Claims, error)
}

// UserLookup resolves a token subject.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID      int64
	Username    string
	IsStaff     bool
	IsSuperuser bool
}

const principalKey = "principal"

type principalCtxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal stored by the gate, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}

// PrincipalFrom returns the principal resolved for the current request, if any.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}

// GateStatus maps authentication failures to HTTP statuses.
var GateStatus = apperr.StatusTable{
	apperr.MissingToken:   http.StatusUnauthorized,
	apperr.TokenInvalid:   http.StatusUnauthorized,
	apperr.TokenExpired:   http.StatusUnauthorized,
	apperr.WrongTokenType: http.StatusUnauthorized,
	apperr.UserNotFound:   http.StatusUnauthorized,
	apperr.UserInactive:   http.StatusForbidden,
}

// Gate authenticates bearer tokens and enforces a Policy.
type Gate struct {
	verifier TokenVerifier
	users    UserLookup
	policy   *Policy
	log      zerolog.Logger
	now      func() time.Time
}

func NewGate(verifier TokenVerifier, users UserLookup, policy *Policy, log zerolog.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		users:    users,
		policy:   policy,
		log:      logger.Component(log, "gate"),
		now:      time.Now,
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate resolves the principal behind an Authorization header value.
func (g *Gate) Authenticate(ctx context.Context, header string) (*Principal, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, apperr.New(apperr.MissingToken, "Authentication credentials were not provided.")
	}

	claims, err := g.verifier.VerifyKind(token, utils.AccessToken, g.now())
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrExpired):
		return nil, apperr.Wrap(apperr.TokenExpired, "Token expired", err)
	case errors.Is(err, utils.ErrWrongTokenType):
		return nil, apperr.Wrap(apperr.WrongTokenType, "Token has wrong type", err)
	default:
		return nil, apperr.Wrap(apperr.TokenInvalid, "Invalid token", err)
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.UserInactive, "User inactive")
	}

	return &Principal{
		UserID:      user.ID,
		Username:    user.Username,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}, nil
}

// Require gates one operation on resource.
func (g *Gate) Require(resource string, op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		g.check(c, resource, op)
	}
}

// Resource gates every route of a resource group, deriving the operation from
// the method and the presence of an :id path parameter.
func (g *Gate) Resource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		g.check(c, resource, OperationFor(c.Request.Method, c.Param("id") != ""))
	}
}

func (g *Gate) check(c *gin.Context, resource string, op Operation) {
	req := g.policy.Requirement(resource, op)
	header := c.GetHeader("Authorization")

	if req == Anonymous && header == "" {
		c.Next()
		return
	}

	principal, err := g.Authenticate(c.Request.Context(), header)
	if err != nil {
		kind := apperr.KindOf(err)
		if req == Anonymous && kind != apperr.Internal {
			c.Next()
			return
		}
		g.abort(c, resource, op, err)
		return
	}

	c.Set(principalKey, principal)
	c.Set(logger.FieldUserID, principal.UserID)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
	c.Next()
}

func (g *Gate) abort(c *gin.Context, resource string, op Operation, err error) {
	status, msg := GateStatus.Response(err)
	event := g.log.Info()
	if status == http.StatusInternalServerError {
		event = g.log.Error()
	}
	event.Err(err).
		Str("resource", resource).
		Str("operation", string(op)).
		Int("status", status).
		Msg("request rejected by gate")

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
