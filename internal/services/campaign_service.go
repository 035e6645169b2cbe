package services

import (
	"context"
	"log"
	"time"

	"patronhub/internal/caching"
	"patronhub/internal/common"
	"patronhub/internal/models"
	"patronhub/internal/repositories"

	"github.com/google/uuid"
)

const campaignCacheTTL = 5 * time.Minute

// CreateCampaignParams carries the creator-supplied campaign fields.
type CreateCampaignParams struct {
	Title        string
	Description  string
	TargetAmount int64
	StartDate    time.Time
	EndDate      time.Time
}

// CampaignPatch holds the owner-updatable fields; nil means unchanged.
type CampaignPatch struct {
	Title        *string
	Description  *string
	TargetAmount *int64
	StartDate    *time.Time
	EndDate      *time.Time
}

// FinishResult reports a settled campaign's terminal status.
type FinishResult struct {
	CampaignID uuid.UUID `json:"campaign_id"`
	Status     string    `json:"status"`
}

type CampaignService interface {
	Create(ctx context.Context, creatorID uuid.UUID, params CreateCampaignParams) (*models.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, filter repositories.CampaignFilter) ([]*models.Campaign, int, error)
	Update(ctx context.Context, creatorID, id uuid.UUID, patch CampaignPatch) (*models.Campaign, error)
	Delete(ctx context.Context, creatorID, id uuid.UUID) error
	// Finish settles the campaign: one transaction flips the campaign terminal
	// and bulk-moves its escrowed payments (and, on failure, its live
	// crowdfunding subscriptions).
	Finish(ctx context.Context, creatorID, campaignID uuid.UUID) (*FinishResult, error)
}

type campaignService struct {
	db       DB
	cacheSvc caching.CacheService
}

func NewCampaignService(db DB, cacheSvc caching.CacheService) CampaignService {
	return &campaignService{db: db, cacheSvc: cacheSvc}
}

func (s *campaignService) Create(ctx context.Context, creatorID uuid.UUID, params CreateCampaignParams) (*models.Campaign, error) {
	if params.Title == "" || params.TargetAmount <= 0 {
		return nil, common.NewValidationError("title and a positive targetAmount are required")
	}
	if !params.EndDate.IsZero() && !params.StartDate.IsZero() && params.EndDate.Before(params.StartDate) {
		return nil, common.NewValidationError("endDate must be after startDate")
	}

	campaign := &models.Campaign{
		ID:           uuid.New(),
		CreatorID:    creatorID,
		Title:        params.Title,
		Description:  params.Description,
		TargetAmount: params.TargetAmount,
		Status:       models.CampaignActive,
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
	}
	if err := repositories.NewCampaignRepo(s.db).Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *campaignService) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	if cached, err := s.cacheSvc.GetCampaign(ctx, id); err == nil {
		return cached, nil
	}

	campaign, err := repositories.NewCampaignRepo(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetCampaign(ctx, campaign, campaignCacheTTL); err != nil {
		log.Printf("Failed to cache campaign %s: %v", id, err)
	}
	return campaign, nil
}

func (s *campaignService) List(ctx context.Context, filter repositories.CampaignFilter) ([]*models.Campaign, int, error) {
	return repositories.NewCampaignRepo(s.db).List(ctx, filter)
}

func (s *campaignService) Update(ctx context.Context, creatorID, id uuid.UUID, patch CampaignPatch) (*models.Campaign, error) {
	repo := repositories.NewCampaignRepo(s.db)
	campaign, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.CreatorID != creatorID {
		// ownership failure reads the same as absence
		return nil, common.NewNotFoundError("campaign")
	}

	if patch.Title != nil {
		campaign.Title = *patch.Title
	}
	if patch.Description != nil {
		campaign.Description = *patch.Description
	}
	if patch.TargetAmount != nil {
		if *patch.TargetAmount <= 0 {
			return nil, common.NewValidationError("targetAmount must be positive")
		}
		campaign.TargetAmount = *patch.TargetAmount
	}
	if patch.StartDate != nil {
		campaign.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		campaign.EndDate = *patch.EndDate
	}

	if err := repo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	if err := s.cacheSvc.DeleteCampaign(ctx, id); err != nil {
		log.Printf("Failed to invalidate campaign cache %s: %v", id, err)
	}
	return campaign, nil
}

func (s *campaignService) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	if err := repositories.NewCampaignRepo(s.db).Delete(ctx, creatorID, id); err != nil {
		return err
	}
	if err := s.cacheSvc.DeleteCampaign(ctx, id); err != nil {
		log.Printf("Failed to invalidate campaign cache %s: %v", id, err)
	}
	return nil
}

func (s *campaignService) Finish(ctx context.Context, creatorID, campaignID uuid.UUID) (*FinishResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewTransientError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	campaigns := repositories.NewCampaignRepo(tx)
	payments := repositories.NewPaymentRepo(tx)
	subs := repositories.NewSubscriptionRepo(tx)

	campaign, err := campaigns.GetOwnedForUpdate(ctx, creatorID, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignActive {
		return nil, common.NewInvalidStateError("campaign already finished")
	}

	status := models.CampaignFailed
	if campaign.CurrentAmount >= campaign.TargetAmount {
		status = models.CampaignSuccessful
	}

	if err := campaigns.SetStatus(ctx, campaignID, status); err != nil {
		return nil, err
	}

	if status == models.CampaignSuccessful {
		released, err := payments.TransitionByCampaign(ctx, campaignID, models.PaymentHeld, models.PaymentReleased)
		if err != nil {
			return nil, err
		}
		log.Printf("Campaign %s successful: released %d held payment(s)", campaignID, released)
	} else {
		refunded, err := payments.TransitionByCampaign(ctx, campaignID, models.PaymentHeld, models.PaymentRefunded)
		if err != nil {
			return nil, err
		}
		refundedSubs, err := subs.RefundActiveByCampaign(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		log.Printf("Campaign %s failed: refunded %d payment(s), %d subscription(s)", campaignID, refunded, refundedSubs)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewTransientError(err)
	}

	if err := s.cacheSvc.DeleteCampaign(ctx, campaignID); err != nil {
		log.Printf("Failed to invalidate campaign cache %s: %v", campaignID, err)
	}
	return &FinishResult{CampaignID: campaignID, Status: status}, nil
}
