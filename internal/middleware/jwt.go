package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NewKeyfunc selects how access tokens are verified: against a JWKS endpoint
// when jwksURL is set (tokens minted by an external identity provider), or the
// shared HMAC secret otherwise.
func NewKeyfunc(jwksURL, jwtSecret string) (jwt.Keyfunc, error) {
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			return nil, err
		}
		log.Printf("JWT verification using JWKS endpoint %s", jwksURL)
		return jwks.Keyfunc, nil
	}
	return func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, nil
}

// AttachUserContext is the echojwt success handler: it lifts the verified
// claims into the request context so handlers see a typed identity instead of
// a raw token.
func AttachUserContext(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return
	}
	role, _ := claims["role"].(string)

	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.RoleKey, role)
	c.SetRequest(c.Request().WithContext(ctx))
}

// OptionalJWT authenticates routes that also serve guests: a missing or bad
// token leaves the context anonymous instead of failing the request.
func OptionalJWT(keyFn jwt.Keyfunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || tokenString == authHeader {
				return next(c)
			}

			token, err := jwt.Parse(tokenString, keyFn)
			if err != nil || !token.Valid {
				return next(c)
			}

			c.Set("user", token)
			AttachUserContext(c)

			return next(c)
		}
	}
}

// RequireCreator gates creator-only routes (tiers, campaigns, posts).
func RequireCreator(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := common.RoleFromContext(c.Request().Context())
		if !ok || role != models.RoleCreator {
			return echo.NewHTTPError(http.StatusForbidden, "Creator role required")
		}
		return next(c)
	}
}
