package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"patronhub/internal/caching"
	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims are the JWT claims issued for access tokens.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	GenerateTokens(ctx context.Context, userID uuid.UUID, role string) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	RevokeToken(ctx context.Context, refreshToken string) error
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int
	refreshTTL int
}

func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *authService) GenerateTokens(ctx context.Context, userID uuid.UUID, role string) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "patronhub-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"patronhub-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := s.generateSecureToken()
	refreshTokenHash := s.hashToken(refreshToken)

	refreshTokenData := fmt.Sprintf("%s:%s:%d", userID.String(), role, now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// token generation itself succeeded, the refresh token just won't work
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
	refreshTokenHash := s.hashToken(refreshToken)
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)

	data, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil {
		return nil, common.NewValidationError("invalid or expired refresh token")
	}

	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return nil, common.NewValidationError("invalid or expired refresh token")
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, common.NewValidationError("invalid or expired refresh token")
	}

	// single use: rotate by deleting the old token before issuing anew
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete used refresh token: %v", err)
	}

	return s.GenerateTokens(ctx, userID, parts[1])
}

func (s *authService) RevokeToken(ctx context.Context, refreshToken string) error {
	cacheKey := fmt.Sprintf("refresh_token:%s", s.hashToken(refreshToken))
	return s.cacheSvc.Delete(ctx, cacheKey)
}

func (s *authService) generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// rand.Read on supported platforms never fails
		panic(err)
	}
	return hex.EncodeToString(b)
}

func (s *authService) hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
