package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind is the value of the "type" claim.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Defaults used when a CodecConfig field is zero.
const (
	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultLeeway     = 10 * time.Second
	DefaultIssueSkew  = 10 * time.Second
)

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrMalformed        = errors.New("token is malformed")
	ErrWrongTokenType   = errors.New("token has wrong type")
)

// Claims is the signed payload. Only user_id, type, iat and exp are emitted.
type Claims struct {
	UserID int64     `json:"user_id"`
	Type   TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// CodecConfig is injected into NewCodec; nothing is read from globals.
type CodecConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Leeway absorbs clock skew when checking exp.
	Leeway time.Duration
	// IssueSkew backdates iat so verifiers slightly behind the issuer accept the token.
	IssueSkew time.Duration
}

// Codec issues and verifies HS256 tokens.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
	issueSkew  time.Duration
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret is required")
	}
	c := &Codec{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		leeway:     cfg.Leeway,
		issueSkew:  cfg.IssueSkew,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = DefaultAccessTTL
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = DefaultRefreshTTL
	}
	if c.leeway <= 0 {
		c.leeway = DefaultLeeway
	}
	if c.issueSkew <= 0 {
		c.issueSkew = DefaultIssueSkew
	}
	if c.accessTTL >= c.refreshTTL {
		return nil, fmt.Errorf("jwt: access ttl %s must be shorter than refresh ttl %s", c.accessTTL, c.refreshTTL)
	}
	return c, nil
}

// Leeway is the default verification leeway.
func (c *Codec) Leeway() time.Duration {
	return c.leeway
}

// Lifetime returns how long a token of the given kind stays valid.
func (c *Codec) Lifetime(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue signs a token for userID. iat is backdated by the issue skew.
func (c *Codec) Issue(userID int64, kind TokenKind, now time.Time) (string, error) {
	if !kind.valid() {
		return "", fmt.Errorf("jwt: unknown token kind %q", kind)
	}

	claims := Claims{
		UserID: userID,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-c.issueSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.Lifetime(kind))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature, required fields, expiry and issue time. A token is expired only
// once now is past exp + leeway, and iat may be at most leeway ahead of now.
func (c *Codec) Verify(tokenString string, now time.Time, leeway time.Duration) (*Claims, error) {
	// Time claims are checked below so that exp + leeway itself is still accepted.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.UserID <= 0 || !claims.Type.valid() || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, ErrMalformed
	}
	if now.After(claims.ExpiresAt.Add(leeway)) {
		return nil, fmt.Errorf("%w: %w", ErrExpired, jwt.ErrTokenExpired)
	}
	if claims.IssuedAt.After(now.Add(leeway)) {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, jwt.ErrTokenUsedBeforeIssued)
	}

	return claims, nil
}

// VerifyKind verifies the token with the default leeway and requires the given type.
func (c *Codec) VerifyKind(tokenString string, kind TokenKind, now time.Time) (*Claims, error) {
	claims, err := c.Verify(tokenString, now, c.leeway)
	if err != nil {
		return nil, err
	}
	if claims.Type != kind {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// TokenID derives the revocation identifier of a raw token.
func TokenID(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func (k TokenKind) valid() bool {
	return k == AccessToken || k == RefreshToken
}
