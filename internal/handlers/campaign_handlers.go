package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"patronhub/internal/common"
	"patronhub/internal/repositories"
	"patronhub/internal/services"

	"github.com/labstack/echo/v4"
)

// CampaignHandlers handles HTTP requests for crowdfunding campaigns.
type CampaignHandlers struct {
	campaignService services.CampaignService
}

func NewCampaignHandlers(campaignService services.CampaignService) *CampaignHandlers {
	return &CampaignHandlers{campaignService: campaignService}
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// CreateCampaign handles POST /campaigns
// @Summary Start a crowdfunding campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Campaign
// @Router /campaigns [post]
func (h *CampaignHandlers) CreateCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		TargetAmount int64  `json:"target_amount"`
		StartDate    string `json:"start_date"`
		EndDate      string `json:"end_date"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return common.SendValidationError(c, "start_date", "Invalid date format")
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return common.SendValidationError(c, "end_date", "Invalid date format")
	}

	campaign, err := h.campaignService.Create(ctx, creatorID, services.CreateCampaignParams{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		StartDate:    startDate,
		EndDate:      endDate,
	})
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, campaign)
}

// GetCampaign handles GET /campaigns/:id
// @Summary Fetch a campaign by ID
// @Tags campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.Campaign
// @Router /campaigns/{id} [get]
func (h *CampaignHandlers) GetCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	campaign, err := h.campaignService.Get(ctx, id)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, campaign)
}

// ListCampaigns handles GET /campaigns
// @Summary List campaigns with paging and optional status filter
// @Tags campaigns
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /campaigns [get]
func (h *CampaignHandlers) ListCampaigns(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repositories.CampaignFilter{
		Status:   strings.TrimSpace(c.QueryParam("status")),
		SortDesc: true,
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	campaigns, total, err := h.campaignService.List(ctx, filter)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"campaigns": campaigns,
		"total":     total,
	})
}

// UpdateCampaign handles PUT /campaigns/:id
// @Summary Update one of the caller's campaigns
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.Campaign
// @Router /campaigns/{id} [put]
func (h *CampaignHandlers) UpdateCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		TargetAmount *int64  `json:"target_amount"`
		StartDate    *string `json:"start_date"`
		EndDate      *string `json:"end_date"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	patch := services.CampaignPatch{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			return common.SendValidationError(c, "start_date", "Invalid date format")
		}
		patch.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := parseDate(*req.EndDate)
		if err != nil {
			return common.SendValidationError(c, "end_date", "Invalid date format")
		}
		patch.EndDate = &t
	}

	campaign, err := h.campaignService.Update(ctx, creatorID, id, patch)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign handles DELETE /campaigns/:id
// @Summary Delete one of the caller's campaigns (active only)
// @Tags campaigns
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} map[string]string
// @Router /campaigns/{id} [delete]
func (h *CampaignHandlers) DeleteCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.campaignService.Delete(ctx, creatorID, id); err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Campaign deleted"})
}

// FinishCampaign handles POST /campaigns/:id/finish
// @Summary Settle a campaign as successful or failed
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} services.FinishResult
// @Router /campaigns/{id}/finish [post]
func (h *CampaignHandlers) FinishCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	result, err := h.campaignService.Finish(ctx, creatorID, id)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
