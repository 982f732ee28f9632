package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/testsupport"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-of-sufficient-size"

func newTokens(t *testing.T) *TokenService {
	t.Helper()
	tokens, err := NewTokenService(testSecret, time.Hour, "foodgram")
	require.NoError(t, err)
	return tokens
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("short", time.Hour, "foodgram")
	assert.Error(t, err)
	_, err = NewTokenService(testSecret, 0, "foodgram")
	assert.Error(t, err)
}

func TestTokenService_IssueAndParse(t *testing.T) {
	tokens := newTokens(t)

	first, err := tokens.Issue(42)
	require.NoError(t, err)
	second, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := tokens.Parse(first)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestTokenService_Rejects(t *testing.T) {
	tokens := newTokens(t)

	other, err := NewTokenService("another-secret-of-enough-size", time.Hour, "foodgram")
	require.NoError(t, err)
	foreign, err := other.Issue(1)
	require.NoError(t, err)

	sign := func(claims jwt.RegisteredClaims, method jwt.SigningMethod) string {
		signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return signed
	}
	now := time.Now()
	expired := sign(jwt.RegisteredClaims{
		ID:        "expired",
		Subject:   "1",
		Issuer:    "foodgram",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}, jwt.SigningMethodHS256)
	wrongIssuer := sign(jwt.RegisteredClaims{
		ID:        "issuer",
		Subject:   "1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, jwt.SigningMethodHS256)
	wrongAlg := sign(jwt.RegisteredClaims{
		ID:        "alg",
		Subject:   "1",
		Issuer:    "foodgram",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, jwt.SigningMethodHS512)
	badSubject := sign(jwt.RegisteredClaims{
		ID:        "subject",
		Subject:   "vasya",
		Issuer:    "foodgram",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, jwt.SigningMethodHS256)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"foreign":      foreign,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"wrong alg":    wrongAlg,
		"bad subject":  badSubject,
	} {
		_, err := tokens.Parse(token)
		assert.ErrorIs(t, err, types.ErrUnauthorized, name)
	}
}

func TestLoginLogoutResolve(t *testing.T) {
	db := testsupport.NewDB(t)
	ctx := context.Background()
	tokens := newTokens(t)
	user := testsupport.CreateUser(t, db, "vasya")

	_, err := Login(ctx, db, tokens, user.Email, "wrong-password")
	assert.ErrorIs(t, err, types.ErrInvalidOperation)

	token, err := Login(ctx, db, tokens, user.Email, testsupport.Password)
	require.NoError(t, err)

	resolved, claims, err := ResolveToken(ctx, db, tokens, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	require.NoError(t, Logout(ctx, db, claims))
	// Logging out twice is harmless
	require.NoError(t, Logout(ctx, db, claims))

	_, _, err = ResolveToken(ctx, db, tokens, token)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	// Other sessions stay valid
	fresh, err := Login(ctx, db, tokens, user.Email, testsupport.Password)
	require.NoError(t, err)
	_, _, err = ResolveToken(ctx, db, tokens, fresh)
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	_, _, err = ResolveToken(ctx, db, tokens, fresh)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestResolveToken_DeletedUser(t *testing.T) {
	db := testsupport.NewDB(t)
	tokens := newTokens(t)
	token, err := tokens.Issue(777)
	require.NoError(t, err)

	_, _, err = ResolveToken(context.Background(), db, tokens, token)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestPurgeRevokedTokens(t *testing.T) {
	db := testsupport.NewDB(t)
	ctx := context.Background()
	now := time.Now()

	for i, expiresAt := range []time.Time{now.Add(-2 * time.Hour), now.Add(-time.Minute), now.Add(time.Hour)} {
		require.NoError(t, Logout(ctx, db, &TokenClaims{
			UserID:    1,
			TokenID:   "token-" + strconv.Itoa(i),
			ExpiresAt: expiresAt,
		}))
	}

	purged, err := PurgeRevokedTokens(ctx, db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, purged)

	var left []models.RevokedToken
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "token-2", left[0].TokenID)
}
