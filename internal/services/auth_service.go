package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidTokenMessage = "Недопустимый токен."

// TokenService issues and verifies the HS256 tokens used by
// "Authorization: Token <token>".
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// TokenClaims is what a verified token says.
type TokenClaims struct {
	UserID    uint64
	TokenID   string
	ExpiresAt time.Time
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters.
func NewTokenService(secret string, ttl time.Duration, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

// Issue signs a new token for userID with a random token id.
func (s *TokenService) Issue(userID uint64) (string, error) {
	now := time.Now()
	c := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(userID, 10),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm, issuer and expiry.
func (s *TokenService) Parse(token string) (*TokenClaims, error) {
	var c jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, types.Unauthorized(invalidTokenMessage)
	}
	userID, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || c.ID == "" {
		return nil, types.Unauthorized(invalidTokenMessage)
	}
	return &TokenClaims{UserID: userID, TokenID: c.ID, ExpiresAt: c.ExpiresAt.Time}, nil
}

// Login checks the credentials and issues a token.
func Login(ctx context.Context, db *gorm.DB, tokens *TokenService, email, password string) (string, error) {
	user, err := CheckCredentials(ctx, db, email, password)
	if err != nil {
		return "", err
	}
	return tokens.Issue(user.ID)
}

// Logout revokes the token described by claims.
func Logout(ctx context.Context, db *gorm.DB, claims *TokenClaims) error {
	revoked := models.RevokedToken{
		TokenID:   claims.TokenID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt,
	}
	err := db.WithContext(ctx).Create(&revoked).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}

// ResolveToken returns the active user a token belongs to. Revoked tokens,
// unknown and inactive users are rejected.
func ResolveToken(ctx context.Context, db *gorm.DB, tokens *TokenService, token string) (*models.User, *TokenClaims, error) {
	claims, err := tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	var revoked int64
	if err := db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_id = ?", claims.TokenID).
		Count(&revoked).Error; err != nil {
		return nil, nil, err
	}
	if revoked > 0 {
		return nil, nil, types.Unauthorized(invalidTokenMessage)
	}

	var user models.User
	err = quiet(ctx, db).Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, types.Unauthorized("Пользователь неактивен или удален.")
	}
	if err != nil {
		return nil, nil, err
	}
	return &user, claims, nil
}

// PurgeRevokedTokens deletes revocations of tokens that have expired anyway.
func PurgeRevokedTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
