package handlers

import (
	"net/http"
	"strings"

	"patronhub/internal/common"
	"patronhub/internal/services"

	"github.com/labstack/echo/v4"
)

// TierHandlers handles HTTP requests for membership tiers.
type TierHandlers struct {
	tierService services.TierService
}

func NewTierHandlers(tierService services.TierService) *TierHandlers {
	return &TierHandlers{tierService: tierService}
}

// CreateTier handles POST /tiers
// @Summary Create a membership tier
// @Tags tiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Tier
// @Router /tiers [post]
func (h *TierHandlers) CreateTier(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name  string   `json:"name"`
		Price int64    `json:"price"`
		Perks []string `json:"perks"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return common.SendValidationError(c, "name", "Tier name is required")
	}

	tier, err := h.tierService.Create(ctx, creatorID, req.Name, req.Price, req.Perks)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, tier)
}

// ListTiers handles GET /creators/:creatorId/tiers
// @Summary List a creator's tiers ordered by price
// @Tags tiers
// @Produce json
// @Param creatorId path string true "Creator ID"
// @Success 200 {array} models.Tier
// @Router /creators/{creatorId}/tiers [get]
func (h *TierHandlers) ListTiers(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, err := common.ValidateUUID(c.Param("creatorId"), "creatorId")
	if err != nil {
		return common.SendValidationError(c, "creatorId", err.Error())
	}

	tiers, err := h.tierService.List(ctx, creatorID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tiers": tiers,
		"count": len(tiers),
	})
}

// UpdateTier handles PUT /tiers/:id
// @Summary Update one of the caller's tiers
// @Tags tiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tier ID"
// @Success 200 {object} models.Tier
// @Router /tiers/{id} [put]
func (h *TierHandlers) UpdateTier(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tierID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Price *int64   `json:"price"`
		Perks []string `json:"perks"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tier, err := h.tierService.Update(ctx, creatorID, tierID, services.TierPatch{
		Price: req.Price,
		Perks: req.Perks,
	})
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, tier)
}

// DeleteTier handles DELETE /tiers/:id
// @Summary Delete one of the caller's tiers
// @Tags tiers
// @Security BearerAuth
// @Param id path string true "Tier ID"
// @Success 200 {object} map[string]string
// @Router /tiers/{id} [delete]
func (h *TierHandlers) DeleteTier(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tierID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.tierService.Delete(ctx, creatorID, tierID); err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Tier deleted"})
}
