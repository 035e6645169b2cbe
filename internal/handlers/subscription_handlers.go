package handlers

import (
	"net/http"
	"strings"

	"patronhub/internal/common"
	"patronhub/internal/models"
	"patronhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandlers handles HTTP requests for the subscription lifecycle.
type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandlers(subscriptionService services.SubscriptionService) *SubscriptionHandlers {
	return &SubscriptionHandlers{subscriptionService: subscriptionService}
}

// CreateSubscriptionRequest is the subscribe payload.
type CreateSubscriptionRequest struct {
	CreatorID  string `json:"creator_id"`
	CampaignID string `json:"campaign_id,omitempty"`
	TierName   string `json:"tier_name"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
}

// CreateSubscription handles POST /subscriptions
// @Summary Subscribe to a creator tier or contribute to a campaign
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSubscriptionRequest true "Subscription payload"
// @Success 201 {object} services.CreateSubscriptionResult
// @Router /subscriptions [post]
func (h *SubscriptionHandlers) CreateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	creatorID, err := common.ValidateUUID(req.CreatorID, "creator_id")
	if err != nil {
		return common.SendValidationError(c, "creator_id", err.Error())
	}
	if userID == creatorID {
		return common.SendValidationError(c, "creator_id", "You cannot subscribe to yourself")
	}

	subType := strings.TrimSpace(req.Type)
	if subType == "" {
		subType = models.SubscriptionRegular
	}

	var campaignID *uuid.UUID
	if req.CampaignID != "" {
		id, err := common.ValidateUUID(req.CampaignID, "campaign_id")
		if err != nil {
			return common.SendValidationError(c, "campaign_id", err.Error())
		}
		campaignID = &id
	}

	result, err := h.subscriptionService.Create(ctx, userID, services.CreateSubscriptionParams{
		CreatorID:  creatorID,
		CampaignID: campaignID,
		TierName:   req.TierName,
		Type:       subType,
		Amount:     req.Amount,
	})
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// CancelSubscription handles POST /subscriptions/:id/cancel
// @Summary Cancel one of the caller's subscriptions
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandlers) CancelSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	subscriptionID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	refunded, err := h.subscriptionService.Cancel(ctx, userID, subscriptionID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":           "Subscription cancelled",
		"refunded_payments": refunded,
	})
}

// RefreshSubscriptions handles POST /subscriptions/refresh
// @Summary Resume any of the caller's paused subscriptions that are due
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.RefreshResult
// @Router /subscriptions/refresh [post]
func (h *SubscriptionHandlers) RefreshSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	result, err := h.subscriptionService.Refresh(ctx, userID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// ListMySubscriptions handles GET /subscriptions
// @Summary List the caller's subscriptions with creator and campaign details
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /subscriptions [get]
func (h *SubscriptionHandlers) ListMySubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	subscriptions, err := h.subscriptionService.ListMine(ctx, userID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"subscriptions": subscriptions,
		"count":         len(subscriptions),
	})
}

// ListSubscriptionPayments handles GET /subscriptions/:id/payments
// @Summary List the payment ledger of one of the caller's subscriptions
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Router /subscriptions/{id}/payments [get]
func (h *SubscriptionHandlers) ListSubscriptionPayments(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	subscriptionID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	payments, err := h.subscriptionService.ListPayments(ctx, userID, subscriptionID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"count":    len(payments),
	})
}

// ListMyMemberships handles GET /memberships
// @Summary List the caller's current membership per creator
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /memberships [get]
func (h *SubscriptionHandlers) ListMyMemberships(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	memberships, err := h.subscriptionService.ListMemberships(ctx, userID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"memberships": memberships,
		"count":       len(memberships),
	})
}
