package handlers

import (
	"net/http"
	"strings"

	"patronhub/internal/common"
	"patronhub/internal/models"
	"patronhub/internal/repositories"
	"patronhub/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles public creator profiles and profile updates.
type UserHandlers struct {
	userRepo    repositories.UserRepository
	tierService services.TierService
}

func NewUserHandlers(userRepo repositories.UserRepository, tierService services.TierService) *UserHandlers {
	return &UserHandlers{
		userRepo:    userRepo,
		tierService: tierService,
	}
}

// GetCreator handles GET /creators/:creatorId
// @Summary Fetch a creator's public profile with their tiers
// @Tags creators
// @Produce json
// @Param creatorId path string true "Creator ID"
// @Success 200 {object} map[string]interface{}
// @Router /creators/{creatorId} [get]
func (h *UserHandlers) GetCreator(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, err := common.ValidateUUID(c.Param("creatorId"), "creatorId")
	if err != nil {
		return common.SendValidationError(c, "creatorId", err.Error())
	}

	user, err := h.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return common.SendServiceError(c, err)
	}
	if user.Role != models.RoleCreator {
		return common.SendServiceError(c, common.NewNotFoundError("creator"))
	}

	tiers, err := h.tierService.List(ctx, creatorID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"creator": user.Public(),
		"tiers":   tiers,
	})
}

// UpdateProfile handles PUT /users/me
// @Summary Update the caller's display name or upgrade to creator
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [put]
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name *string `json:"name"`
		Role *string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return common.SendValidationError(c, "name", "Name cannot be empty")
		}
		user.Name = name
	}
	if req.Role != nil && *req.Role != user.Role {
		// Upgrading to creator is allowed; demoting back is not, existing
		// subscribers would lose their tier reference.
		if *req.Role != models.RoleCreator {
			return common.SendValidationError(c, "role", "Only an upgrade to 'creator' is allowed")
		}
		user.Role = models.RoleCreator
	}

	if err := h.userRepo.Update(ctx, user); err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}
