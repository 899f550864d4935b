package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"adoteja/internal/caching"
	"adoteja/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetTokenTTL = time.Hour

// AuthService issues JWT access tokens, manages redis-held refresh tokens
// and the opaque password-reset tokens.
type AuthService interface {
	GenerateTokens(ctx context.Context, userID uuid.UUID) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	CreateResetToken(ctx context.Context, userID uuid.UUID) (string, error)
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *authService) GenerateTokens(ctx context.Context, userID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := jwt.RegisteredClaims{
		Issuer:    "adoteja-auth",
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{"adoteja-api"},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        tokenID,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := generateSecureToken()
	refreshTokenHash := hashToken(refreshToken)

	refreshTokenData := fmt.Sprintf("%s:%d", userID.String(), now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("adoteja:refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue - token generation succeeded
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       userID.String(),
		IssuedAt:     now,
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	refreshTokenHash := hashToken(refreshToken)

	cacheKey := fmt.Sprintf("adoteja:refresh_token:%s", refreshTokenHash)
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return nil, fmt.Errorf("invalid refresh token")
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid token data")
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token expiry")
	}
	if time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, fmt.Errorf("refresh token expired")
	}

	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	// Rotate: the old refresh token is spent
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete spent refresh token: %v", err)
	}

	return s.GenerateTokens(ctx, userID)
}

func (s *authService) CreateResetToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token := generateSecureToken()
	cacheKey := fmt.Sprintf("adoteja:reset_token:%s", hashToken(token))
	if err := s.cacheSvc.SetString(ctx, cacheKey, userID.String(), resetTokenTTL); err != nil {
		return "", fmt.Errorf("failed to store reset token: %v", err)
	}
	return token, nil
}

func (s *authService) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	cacheKey := fmt.Sprintf("adoteja:reset_token:%s", hashToken(token))
	value, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || value == "" {
		return uuid.Nil, ErrInvalidResetToken
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrInvalidResetToken
	}

	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete consumed reset token: %v", err)
	}
	return userID, nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

// hashToken creates a SHA-256 hash of the token for secure storage
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
