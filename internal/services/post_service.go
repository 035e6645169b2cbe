package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"patronhub/internal/common"
	"patronhub/internal/models"
	"patronhub/internal/repositories"

	"github.com/google/uuid"
)

const (
	lockedBodyGuest = "[Locked] Please login and subscribe to view this post"
	lockedBodyTier  = "[Locked] Not enough tier or campaign not successful"
	mediaURLExpiry  = 15 * time.Minute
	MediaBucket     = "post-media"
)

// CreatePostParams carries the creator-supplied post fields.
type CreatePostParams struct {
	Title                string
	Body                 string
	MinTierName          string
	CampaignID           *uuid.UUID
	IsLockedUntilSuccess bool
}

// PostPatch holds the owner-updatable fields; nil means unchanged.
type PostPatch struct {
	Title                *string
	Body                 *string
	MinTierName          *string
	CampaignID           *uuid.UUID
	IsLockedUntilSuccess *bool
}

// MediaUpload is one incoming media file.
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
	Video       bool
}

type PostService interface {
	Create(ctx context.Context, creatorID uuid.UUID, params CreatePostParams, media []MediaUpload) (*models.Post, error)
	Update(ctx context.Context, creatorID, postID uuid.UUID, patch PostPatch) (*models.Post, error)
	Delete(ctx context.Context, creatorID, postID uuid.UUID) error
	// GetForViewer returns the post with its body replaced by a locked
	// placeholder when the viewer has no access. Guests pass uuid.Nil.
	GetForViewer(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error)
	ListForViewer(ctx context.Context, viewerID, creatorID uuid.UUID) ([]*models.Post, error)
	// MediaURL presigns one of the post's media objects, gated by the same
	// access check as the body.
	MediaURL(ctx context.Context, viewerID, postID uuid.UUID, objectName string) (string, error)
}

type postService struct {
	postRepo     repositories.PostRepository
	tierRepo     repositories.TierRepository
	campaignRepo repositories.CampaignRepository
	accessSvc    AccessService
	minioSvc     MinioService
}

func NewPostService(
	postRepo repositories.PostRepository,
	tierRepo repositories.TierRepository,
	campaignRepo repositories.CampaignRepository,
	accessSvc AccessService,
	minioSvc MinioService,
) PostService {
	return &postService{
		postRepo:     postRepo,
		tierRepo:     tierRepo,
		campaignRepo: campaignRepo,
		accessSvc:    accessSvc,
		minioSvc:     minioSvc,
	}
}

func (s *postService) Create(ctx context.Context, creatorID uuid.UUID, params CreatePostParams, media []MediaUpload) (*models.Post, error) {
	if params.Title == "" || params.Body == "" || params.MinTierName == "" {
		return nil, common.NewValidationError("title, body and minTierName are required")
	}

	if _, err := s.tierRepo.GetByName(ctx, creatorID, params.MinTierName); err != nil {
		if common.IsNotFound(err) {
			return nil, common.NewValidationError("minTierName does not exist for this creator")
		}
		return nil, err
	}

	if params.CampaignID != nil {
		campaign, err := s.campaignRepo.GetByID(ctx, *params.CampaignID)
		if err != nil || campaign.CreatorID != creatorID {
			return nil, common.NewValidationError("campaignId not found or not your campaign")
		}
	}

	post := &models.Post{
		ID:                   uuid.New(),
		CreatorID:            creatorID,
		Title:                params.Title,
		Body:                 params.Body,
		Images:               []string{},
		Videos:               []string{},
		MinTierName:          params.MinTierName,
		CampaignID:           params.CampaignID,
		IsLockedUntilSuccess: params.IsLockedUntilSuccess,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if len(media) > 0 {
		images, videos, err := s.storeMedia(ctx, post.ID, media)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.SetMedia(ctx, post.ID, images, videos); err != nil {
			return nil, err
		}
		post.Images = images
		post.Videos = videos
	}

	return post, nil
}

func (s *postService) storeMedia(ctx context.Context, postID uuid.UUID, media []MediaUpload) (images, videos []string, err error) {
	images = []string{}
	videos = []string{}
	for _, m := range media {
		objectName := fmt.Sprintf("%s/%s", postID, m.Filename)
		if err := s.minioSvc.UploadMedia(ctx, MediaBucket, objectName, m.ContentType, m.Reader, m.Size); err != nil {
			return nil, nil, err
		}
		if m.Video {
			videos = append(videos, objectName)
		} else {
			images = append(images, objectName)
		}
	}
	return images, videos, nil
}

func (s *postService) Update(ctx context.Context, creatorID, postID uuid.UUID, patch PostPatch) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != creatorID {
		return nil, common.NewNotFoundError("post")
	}

	if patch.MinTierName != nil {
		if _, err := s.tierRepo.GetByName(ctx, creatorID, *patch.MinTierName); err != nil {
			if common.IsNotFound(err) {
				return nil, common.NewValidationError("minTierName does not exist for this creator")
			}
			return nil, err
		}
		post.MinTierName = *patch.MinTierName
	}
	if patch.CampaignID != nil {
		campaign, err := s.campaignRepo.GetByID(ctx, *patch.CampaignID)
		if err != nil || campaign.CreatorID != creatorID {
			return nil, common.NewValidationError("campaignId not found or not your campaign")
		}
		post.CampaignID = patch.CampaignID
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Body != nil {
		post.Body = *patch.Body
	}
	if patch.IsLockedUntilSuccess != nil {
		post.IsLockedUntilSuccess = *patch.IsLockedUntilSuccess
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, creatorID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != creatorID {
		return common.NewNotFoundError("post")
	}

	for _, objectName := range append(append([]string{}, post.Images...), post.Videos...) {
		if err := s.minioSvc.DeleteMedia(ctx, MediaBucket, objectName); err != nil {
			log.Printf("Failed to delete media object %s: %v", objectName, err)
		}
	}
	return s.postRepo.Delete(ctx, creatorID, postID)
}

func (s *postService) GetForViewer(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.lockIfDenied(ctx, viewerID, post)
}

func (s *postService) ListForViewer(ctx context.Context, viewerID, creatorID uuid.UUID) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		locked, err := s.lockIfDenied(ctx, viewerID, post)
		if err != nil {
			return nil, err
		}
		result = append(result, locked)
	}
	return result, nil
}

func (s *postService) lockIfDenied(ctx context.Context, viewerID uuid.UUID, post *models.Post) (*models.Post, error) {
	if viewerID == uuid.Nil {
		lockedPost := *post
		lockedPost.Body = lockedBodyGuest
		return &lockedPost, nil
	}

	allowed, err := s.accessSvc.CanViewPost(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if allowed {
		return post, nil
	}

	lockedPost := *post
	lockedPost.Body = lockedBodyTier
	return &lockedPost, nil
}

func (s *postService) MediaURL(ctx context.Context, viewerID, postID uuid.UUID, objectName string) (string, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}

	owned := false
	for _, o := range append(append([]string{}, post.Images...), post.Videos...) {
		if o == objectName {
			owned = true
			break
		}
	}
	if !owned {
		return "", common.NewNotFoundError("media")
	}

	if viewerID == uuid.Nil {
		return "", common.NewNotFoundError("media")
	}
	allowed, err := s.accessSvc.CanViewPost(ctx, viewerID, post)
	if err != nil {
		return "", err
	}
	if !allowed {
		// access failure reads the same as absence
		return "", common.NewNotFoundError("media")
	}

	return s.minioSvc.GetPresignedURL(MediaBucket, objectName, mediaURLExpiry)
}
