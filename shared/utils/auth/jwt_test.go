package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(CodecConfig{Secret: "test-secret"})
	require.NoError(t, err)
	return codec
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := NewCodec(CodecConfig{})
	assert.Error(t, err)

	_, err = NewCodec(CodecConfig{Secret: "s", AccessTTL: 8 * 24 * time.Hour, RefreshTTL: time.Hour})
	assert.Error(t, err)

	codec, err := NewCodec(CodecConfig{Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, codec.Lifetime(AccessToken))
	assert.Equal(t, 7*24*time.Hour, codec.Lifetime(RefreshToken))
	assert.Equal(t, 10*time.Second, codec.Leeway())
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, kind := range []TokenKind{AccessToken, RefreshToken} {
		t.Run(string(kind), func(t *testing.T) {
			token, err := codec.Issue(42, kind, issuedAt)
			require.NoError(t, err)

			claims, err := codec.Verify(token, issuedAt, codec.Leeway())
			require.NoError(t, err)
			assert.Equal(t, int64(42), claims.UserID)
			assert.Equal(t, kind, claims.Type)
			assert.Equal(t, issuedAt.Add(-10*time.Second).Unix(), claims.IssuedAt.Unix())
			assert.Equal(t, issuedAt.Add(codec.Lifetime(kind)).Unix(), claims.ExpiresAt.Unix())
		})
	}
}

func TestIssue_PayloadFields(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(7, AccessToken, issuedAt)
	require.NoError(t, err)

	mapClaims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, mapClaims)
	require.NoError(t, err)

	assert.Len(t, mapClaims, 4)
	assert.Equal(t, float64(7), mapClaims["user_id"])
	assert.Equal(t, "access", mapClaims["type"])
	assert.Equal(t, float64(issuedAt.Unix()-10), mapClaims["iat"])
	assert.Equal(t, float64(issuedAt.Add(time.Hour).Unix()), mapClaims["exp"])
}

func TestVerify_Expiry(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(1, AccessToken, issuedAt)
	require.NoError(t, err)
	exp := issuedAt.Add(time.Hour)

	_, err = codec.Verify(token, exp.Add(5*time.Second), 10*time.Second)
	assert.NoError(t, err, "inside leeway")

	_, err = codec.Verify(token, exp.Add(10*time.Second), 10*time.Second)
	assert.NoError(t, err, "exactly at exp + leeway")

	_, err = codec.Verify(token, exp.Add(10*time.Second+time.Millisecond), 10*time.Second)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = codec.Verify(token, exp.Add(11*time.Second), 10*time.Second)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = codec.Verify(token, exp, 0)
	assert.NoError(t, err, "exactly at exp without leeway")

	_, err = codec.Verify(token, exp.Add(time.Second), 0)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_FutureIssuedAt(t *testing.T) {
	codec := newTestCodec(t)
	// iat = issuedAt - 10s
	token, err := codec.Issue(1, AccessToken, issuedAt)
	require.NoError(t, err)
	iat := issuedAt.Add(-10 * time.Second)

	_, err = codec.Verify(token, iat.Add(-10*time.Second), 10*time.Second)
	assert.NoError(t, err, "iat exactly leeway ahead")

	_, err = codec.Verify(token, iat.Add(-11*time.Second), 10*time.Second)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorIs(t, err, jwt.ErrTokenUsedBeforeIssued)

	_, err = codec.Verify(token, iat.Add(-time.Second), 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(1, AccessToken, issuedAt)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered, issuedAt, codec.Leeway())
	assert.ErrorIs(t, err, ErrInvalidSignature)

	other, err := NewCodec(CodecConfig{Secret: "another-secret"})
	require.NoError(t, err)
	_, err = other.Verify(token, issuedAt, other.Leeway())
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	codec := newTestCodec(t)
	claims := Claims{
		UserID: 1,
		Type:   AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = codec.Verify(token, issuedAt, codec.Leeway())
	assert.ErrorIs(t, err, ErrInvalidSignature)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Verify(unsigned, issuedAt, codec.Leeway())
	assert.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Verify("invalidtoken", issuedAt, codec.Leeway())
	assert.ErrorIs(t, err, ErrMalformed)

	sign := func(c jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}

	cases := map[string]jwt.Claims{
		"missing user_id": jwt.MapClaims{"type": "access", "iat": issuedAt.Unix(), "exp": issuedAt.Add(time.Hour).Unix()},
		"unknown type":    jwt.MapClaims{"user_id": 1, "type": "session", "iat": issuedAt.Unix(), "exp": issuedAt.Add(time.Hour).Unix()},
		"missing exp":     jwt.MapClaims{"user_id": 1, "type": "access", "iat": issuedAt.Unix()},
		"missing iat":     jwt.MapClaims{"user_id": 1, "type": "access", "exp": issuedAt.Add(time.Hour).Unix()},
		"string user_id":  jwt.MapClaims{"user_id": "1", "type": "access", "iat": issuedAt.Unix(), "exp": issuedAt.Add(time.Hour).Unix()},
		"exp before iat":  jwt.MapClaims{"user_id": 1, "type": "access", "iat": issuedAt.Unix(), "exp": issuedAt.Unix()},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(sign(claims), issuedAt.Add(-time.Second), codec.Leeway())
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestVerifyKind_WrongType(t *testing.T) {
	codec := newTestCodec(t)
	access, err := codec.Issue(3, AccessToken, issuedAt)
	require.NoError(t, err)

	_, err = codec.VerifyKind(access, RefreshToken, issuedAt)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := codec.VerifyKind(access, AccessToken, issuedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
}

func TestTokenID(t *testing.T) {
	assert.Len(t, TokenID("abc"), 64)
	assert.Equal(t, TokenID("abc"), TokenID("abc"))
	assert.NotEqual(t, TokenID("abc"), TokenID("abd"))
}
