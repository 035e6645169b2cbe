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

const tierCacheTTL = 10 * time.Minute

// TierPatch holds the updatable tier fields; nil means unchanged.
type TierPatch struct {
	Price *int64
	Perks []string
}

type TierService interface {
	Create(ctx context.Context, creatorID uuid.UUID, name string, price int64, perks []string) (*models.Tier, error)
	List(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error)
	Update(ctx context.Context, creatorID, tierID uuid.UUID, patch TierPatch) (*models.Tier, error)
	Delete(ctx context.Context, creatorID, tierID uuid.UUID) error
}

type tierService struct {
	tierRepo repositories.TierRepository
	cacheSvc caching.CacheService
}

func NewTierService(tierRepo repositories.TierRepository, cacheSvc caching.CacheService) TierService {
	return &tierService{tierRepo: tierRepo, cacheSvc: cacheSvc}
}

func (s *tierService) Create(ctx context.Context, creatorID uuid.UUID, name string, price int64, perks []string) (*models.Tier, error) {
	if name == "" || price <= 0 {
		return nil, common.NewValidationError("name and a positive price are required")
	}
	if perks == nil {
		perks = []string{}
	}

	tier := &models.Tier{
		ID:        uuid.New(),
		CreatorID: creatorID,
		Name:      name,
		Price:     price,
		Perks:     perks,
	}
	if err := s.tierRepo.Create(ctx, tier); err != nil {
		return nil, err
	}
	s.invalidate(ctx, creatorID)
	return tier, nil
}

func (s *tierService) List(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error) {
	if cached, err := s.cacheSvc.GetCreatorTiers(ctx, creatorID); err == nil {
		return cached, nil
	}

	tiers, err := s.tierRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetCreatorTiers(ctx, creatorID, tiers, tierCacheTTL); err != nil {
		log.Printf("Failed to cache tiers for creator %s: %v", creatorID, err)
	}
	return tiers, nil
}

func (s *tierService) Update(ctx context.Context, creatorID, tierID uuid.UUID, patch TierPatch) (*models.Tier, error) {
	tier, err := s.tierRepo.GetByID(ctx, creatorID, tierID)
	if err != nil {
		return nil, err
	}

	if patch.Price != nil {
		if *patch.Price <= 0 {
			return nil, common.NewValidationError("price must be positive")
		}
		tier.Price = *patch.Price
	}
	if patch.Perks != nil {
		tier.Perks = patch.Perks
	}

	if err := s.tierRepo.Update(ctx, tier); err != nil {
		return nil, err
	}
	s.invalidate(ctx, creatorID)
	return tier, nil
}

// Delete removes a tier without cascading checks: subscriptions and posts that
// still name it resolve to price 0 and fail closed in access evaluation.
func (s *tierService) Delete(ctx context.Context, creatorID, tierID uuid.UUID) error {
	if err := s.tierRepo.Delete(ctx, creatorID, tierID); err != nil {
		return err
	}
	s.invalidate(ctx, creatorID)
	return nil
}

func (s *tierService) invalidate(ctx context.Context, creatorID uuid.UUID) {
	if err := s.cacheSvc.DeleteCreatorTiers(ctx, creatorID); err != nil {
		log.Printf("Failed to invalidate tier cache for creator %s: %v", creatorID, err)
	}
}
