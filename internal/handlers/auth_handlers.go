package handlers

import (
	"net/http"
	"strings"

	"patronhub/internal/common"
	"patronhub/internal/models"
	"patronhub/internal/repositories"
	"patronhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandlers handles signup, login and token refresh.
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
	}
}

// LoginResponse is the token pair plus the authenticated user.
type LoginResponse struct {
	models.TokenResponse
	User models.PublicUser `json:"user"`
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

// Signup handles POST /auth/signup
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup payload"
// @Success 201 {object} LoginResponse
// @Router /auth/signup [post]
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and email are required")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleCreator {
		return echo.NewHTTPError(http.StatusBadRequest, "Role must be 'user' or 'creator'")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		return common.SendServiceError(c, err)
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusCreated, LoginResponse{
		TokenResponse: *tokens,
		User:          user.Public(),
	})
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse
// @Router /auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := h.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: *tokens,
		User:          user.Public(),
	})
}

// RefreshRequest carries the single-use refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh handles POST /auth/refresh
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh payload"
// @Success 200 {object} models.TokenResponse
// @Router /auth/refresh [post]
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	tokens, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /auth/logout
// @Summary Revoke a refresh token
// @Tags auth
// @Accept json
// @Param request body RefreshRequest true "Token to revoke"
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken != "" {
		if err := h.authService.RevokeToken(ctx, req.RefreshToken); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to revoke token")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /auth/me
// @Summary Return the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /auth/me [get]
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}
