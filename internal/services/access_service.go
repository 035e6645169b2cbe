package services

import (
	"context"

	"patronhub/internal/common"
	"patronhub/internal/models"
	"patronhub/internal/repositories"

	"github.com/google/uuid"
)

// AccessService answers "may this viewer read this post". It is read-only and
// tolerates the documented staleness window between a due resume and the next
// refresh call.
type AccessService interface {
	CanViewPost(ctx context.Context, viewerID uuid.UUID, post *models.Post) (bool, error)
}

type accessService struct {
	membershipRepo repositories.MembershipRepository
	tierSvc        TierService
	campaignSvc    CampaignService
}

func NewAccessService(membershipRepo repositories.MembershipRepository, tierSvc TierService, campaignSvc CampaignService) AccessService {
	return &accessService{
		membershipRepo: membershipRepo,
		tierSvc:        tierSvc,
		campaignSvc:    campaignSvc,
	}
}

func (s *accessService) CanViewPost(ctx context.Context, viewerID uuid.UUID, post *models.Post) (bool, error) {
	// creators always see their own content
	if viewerID == post.CreatorID {
		return true, nil
	}

	entries, err := s.membershipRepo.ListActiveForCreator(ctx, viewerID, post.CreatorID)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 {
		return false, nil
	}

	tiers, err := s.tierSvc.List(ctx, post.CreatorID)
	if err != nil {
		return false, err
	}
	priceByName := make(map[string]int64, len(tiers))
	for _, t := range tiers {
		priceByName[t.Name] = t.Price
	}

	// a required tier that no longer exists denies everyone
	requiredPrice, ok := priceByName[post.MinTierName]
	if !ok {
		return false, nil
	}

	// at most one entry should exist, but take the max entitlement across
	// whatever is there; a stale tier reference counts as 0
	var entitlement int64
	for _, e := range entries {
		if p := priceByName[e.TierName]; p > entitlement {
			entitlement = p
		}
	}
	if entitlement < requiredPrice {
		return false, nil
	}

	if post.IsLockedUntilSuccess && post.CampaignID != nil {
		campaign, err := s.campaignSvc.Get(ctx, *post.CampaignID)
		if err != nil {
			if common.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		if campaign.Status != models.CampaignSuccessful {
			return false, nil
		}
	}

	return true, nil
}
