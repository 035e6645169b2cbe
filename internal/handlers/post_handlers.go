package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"patronhub/internal/common"
	"patronhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PostHandlers handles HTTP requests for gated posts and their media.
type PostHandlers struct {
	postService services.PostService
}

func NewPostHandlers(postService services.PostService) *PostHandlers {
	return &PostHandlers{postService: postService}
}

// viewerID returns the authenticated user, or uuid.Nil for guests.
func viewerID(c echo.Context) uuid.UUID {
	if id, ok := common.UserIDFromContext(c.Request().Context()); ok {
		return id
	}
	return uuid.Nil
}

func collectMedia(form *multipart.Form, field string, video bool) ([]services.MediaUpload, error) {
	var uploads []services.MediaUpload
	for _, header := range form.File[field] {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, services.MediaUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
			Video:       video,
		})
	}
	return uploads, nil
}

// CreatePost handles POST /posts (multipart form with optional media files)
// @Summary Publish a post, optionally gated by tier and campaign outcome
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Post
// @Router /posts [post]
func (h *PostHandlers) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	params := services.CreatePostParams{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Body:        c.FormValue("body"),
		MinTierName: strings.TrimSpace(c.FormValue("min_tier_name")),
	}
	if params.Title == "" {
		return common.SendValidationError(c, "title", "Title is required")
	}
	if raw := c.FormValue("campaign_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "campaign_id")
		if err != nil {
			return common.SendValidationError(c, "campaign_id", err.Error())
		}
		params.CampaignID = &id
	}
	if raw := c.FormValue("is_locked_until_success"); raw != "" {
		locked, err := strconv.ParseBool(raw)
		if err != nil {
			return common.SendValidationError(c, "is_locked_until_success", "Must be true or false")
		}
		params.IsLockedUntilSuccess = locked
	}

	var media []services.MediaUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		images, err := collectMedia(form, "images", false)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded image")
		}
		videos, err := collectMedia(form, "videos", true)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded video")
		}
		media = append(images, videos...)
	}

	post, err := h.postService.Create(ctx, creatorID, params, media)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost handles GET /posts/:id
// @Summary Fetch a post; the body is locked for viewers without access
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Router /posts/{id} [get]
func (h *PostHandlers) GetPost(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	post, err := h.postService.GetForViewer(ctx, viewerID(c), postID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, post)
}

// ListCreatorPosts handles GET /creators/:creatorId/posts
// @Summary List a creator's posts; bodies are locked per viewer access
// @Tags posts
// @Produce json
// @Param creatorId path string true "Creator ID"
// @Success 200 {object} map[string]interface{}
// @Router /creators/{creatorId}/posts [get]
func (h *PostHandlers) ListCreatorPosts(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, err := common.ValidateUUID(c.Param("creatorId"), "creatorId")
	if err != nil {
		return common.SendValidationError(c, "creatorId", err.Error())
	}

	posts, err := h.postService.ListForViewer(ctx, viewerID(c), creatorID)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"posts": posts,
		"count": len(posts),
	})
}

// UpdatePost handles PUT /posts/:id
// @Summary Update one of the caller's posts
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Router /posts/{id} [put]
func (h *PostHandlers) UpdatePost(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	postID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Title                *string `json:"title"`
		Body                 *string `json:"body"`
		MinTierName          *string `json:"min_tier_name"`
		CampaignID           *string `json:"campaign_id"`
		IsLockedUntilSuccess *bool   `json:"is_locked_until_success"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	patch := services.PostPatch{
		Title:                req.Title,
		Body:                 req.Body,
		MinTierName:          req.MinTierName,
		IsLockedUntilSuccess: req.IsLockedUntilSuccess,
	}
	if req.CampaignID != nil && *req.CampaignID != "" {
		id, err := common.ValidateUUID(*req.CampaignID, "campaign_id")
		if err != nil {
			return common.SendValidationError(c, "campaign_id", err.Error())
		}
		patch.CampaignID = &id
	}

	post, err := h.postService.Update(ctx, creatorID, postID, patch)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /posts/:id
// @Summary Delete one of the caller's posts and its stored media
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]string
// @Router /posts/{id} [delete]
func (h *PostHandlers) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	postID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.postService.Delete(ctx, creatorID, postID); err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Post deleted"})
}

// GetPostMedia handles GET /posts/:id/media
// @Summary Presign a media object on a post the viewer can access
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Param object query string true "Stored object name"
// @Success 200 {object} map[string]string
// @Router /posts/{id}/media [get]
func (h *PostHandlers) GetPostMedia(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	objectName := c.QueryParam("object")
	if objectName == "" {
		return common.SendValidationError(c, "object", "Object name is required")
	}

	url, err := h.postService.MediaURL(ctx, viewerID(c), postID, objectName)
	if err != nil {
		return common.SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
