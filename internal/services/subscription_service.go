package services

import (
	"context"
	"log"
	"time"

	"patronhub/internal/common"
	"patronhub/internal/models"
	"patronhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	regularDays   = 30
	msPerDay      = int64(24 * 60 * 60 * 1000)
	regularWindow = time.Duration(regularDays) * 24 * time.Hour
)

// DB is the handle the transactional services run on. *pgxpool.Pool satisfies
// it in production, pgxmock pools in tests.
type DB interface {
	repositories.Database
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CreateSubscriptionParams carries the well-typed command for Create.
type CreateSubscriptionParams struct {
	CreatorID  uuid.UUID
	CampaignID *uuid.UUID
	TierName   string
	Type       string
	Amount     int64
}

// CreateSubscriptionResult reports what the creation transaction committed.
type CreateSubscriptionResult struct {
	SubscriptionID uuid.UUID  `json:"subscription_id"`
	PaymentStatus  string     `json:"payment_status"`
	CampaignID     *uuid.UUID `json:"campaign_id"`
	Queued         bool       `json:"queued,omitempty"`
}

// RefreshResult reports which paused subscriptions were resumed.
type RefreshResult struct {
	ResumedCount int         `json:"resumed_count"`
	ResumedIDs   []uuid.UUID `json:"resumed_ids"`
}

// SubscriptionService is the lifecycle engine. Every mutating operation runs as
// one transaction across subscriptions, payments, campaigns and memberships:
// either all touched rows commit or none do.
type SubscriptionService interface {
	Create(ctx context.Context, userID uuid.UUID, params CreateSubscriptionParams) (*CreateSubscriptionResult, error)
	Cancel(ctx context.Context, userID, subscriptionID uuid.UUID) (int64, error)
	Refresh(ctx context.Context, userID uuid.UUID) (*RefreshResult, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*models.SubscriptionDetail, error)
	ListPayments(ctx context.Context, userID, subscriptionID uuid.UUID) ([]*models.Payment, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error)
}

type subscriptionService struct {
	db DB
}

func NewSubscriptionService(db DB) SubscriptionService {
	return &subscriptionService{db: db}
}

func (s *subscriptionService) Create(ctx context.Context, userID uuid.UUID, params CreateSubscriptionParams) (*CreateSubscriptionResult, error) {
	if params.CreatorID == uuid.Nil || params.TierName == "" || params.Type == "" || params.Amount <= 0 {
		return nil, common.NewValidationError("creatorId, tierName, type and amount are required")
	}
	if params.Type != models.SubscriptionRegular && params.Type != models.SubscriptionCrowdfunding {
		return nil, common.NewValidationError("type must be regular or crowdfunding")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewTransientError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tiers := repositories.NewTierRepo(tx)
	subs := repositories.NewSubscriptionRepo(tx)
	payments := repositories.NewPaymentRepo(tx)
	campaigns := repositories.NewCampaignRepo(tx)
	memberships := repositories.NewMembershipRepo(tx)

	tier, err := tiers.GetByName(ctx, params.CreatorID, params.TierName)
	if err != nil {
		return nil, err
	}
	if params.Amount < tier.Price {
		return nil, common.NewValidationError("amount must be >= tier price (%d)", tier.Price)
	}

	var result *CreateSubscriptionResult
	if params.Type == models.SubscriptionCrowdfunding {
		result, err = s.createCrowdfunding(ctx, userID, params, subs, payments, campaigns, memberships)
	} else {
		result, err = s.createRegular(ctx, userID, params, tier, tiers, subs, payments, memberships)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewTransientError(err)
	}
	return result, nil
}

func (s *subscriptionService) createCrowdfunding(
	ctx context.Context,
	userID uuid.UUID,
	params CreateSubscriptionParams,
	subs repositories.SubscriptionRepository,
	payments repositories.PaymentRepository,
	campaigns repositories.CampaignRepository,
	memberships repositories.MembershipRepository,
) (*CreateSubscriptionResult, error) {
	if params.CampaignID == nil {
		return nil, common.NewValidationError("campaignId is required for crowdfunding")
	}

	campaign, err := campaigns.GetByIDForUpdate(ctx, *params.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignActive {
		return nil, common.NewInvalidStateError("campaign is not active")
	}

	now := time.Now()
	sub := &models.Subscription{
		ID:         uuid.New(),
		UserID:     userID,
		CreatorID:  params.CreatorID,
		CampaignID: &campaign.ID,
		TierName:   params.TierName,
		Type:       models.SubscriptionCrowdfunding,
		Status:     models.SubscriptionActive,
		StartDate:  now,
	}
	if err := subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		SubscriptionID: sub.ID,
		CampaignID:     &campaign.ID,
		Amount:         params.Amount,
		Status:         models.PaymentHeld,
	}
	if err := payments.Record(ctx, payment); err != nil {
		return nil, err
	}

	if err := campaigns.IncrementRaised(ctx, campaign.ID, params.Amount); err != nil {
		return nil, err
	}

	entry := &models.Membership{
		UserID:         userID,
		CreatorID:      params.CreatorID,
		SubscriptionID: sub.ID,
		TierName:       params.TierName,
		Active:         true,
	}
	if err := memberships.Replace(ctx, entry); err != nil {
		return nil, err
	}

	return &CreateSubscriptionResult{
		SubscriptionID: sub.ID,
		PaymentStatus:  models.PaymentHeld,
		CampaignID:     &campaign.ID,
	}, nil
}

func (s *subscriptionService) createRegular(
	ctx context.Context,
	userID uuid.UUID,
	params CreateSubscriptionParams,
	tier *models.Tier,
	tiers repositories.TierRepository,
	subs repositories.SubscriptionRepository,
	payments repositories.PaymentRepository,
	memberships repositories.MembershipRepository,
) (*CreateSubscriptionResult, error) {
	now := time.Now()
	newEnd := now.Add(regularWindow)

	current, err := subs.CurrentActiveRegular(ctx, userID, params.CreatorID)
	if err != nil {
		return nil, err
	}

	currentPrice := int64(0)
	if current != nil {
		// the live tier may have been renamed or deleted; a stale reference
		// counts as price 0
		if currentTier, err := tiers.GetByName(ctx, params.CreatorID, current.TierName); err == nil {
			currentPrice = currentTier.Price
		} else if !common.IsNotFound(err) {
			return nil, err
		}
	}

	switch decideRegularChange(current, currentPrice, tier.Price, params.TierName) {
	case changeSameTier:
		return nil, common.NewConflictError("you already have this tier active")

	case changeUpgrade:
		remainingMs := current.EndDate.Sub(now).Milliseconds()
		if remainingMs < 0 {
			remainingMs = 0
		}
		// the higher tier runs first; the remainder of the old one resumes
		// once the new window ends
		if err := subs.Freeze(ctx, current.ID, remainingMs, newEnd); err != nil {
			return nil, err
		}
		if err := memberships.Remove(ctx, userID, params.CreatorID); err != nil {
			return nil, err
		}

	case changeDowngrade:
		queuedMs := int64(regularDays) * msPerDay
		queued := &models.Subscription{
			ID:          uuid.New(),
			UserID:      userID,
			CreatorID:   params.CreatorID,
			TierName:    params.TierName,
			Type:        models.SubscriptionRegular,
			Status:      models.SubscriptionPaused,
			StartDate:   now,
			RemainingMs: &queuedMs,
			ResumeAt:    current.EndDate,
		}
		if err := subs.Create(ctx, queued); err != nil {
			return nil, err
		}
		// downgrade payments are treated as pre-paid
		payment := &models.Payment{
			ID:             uuid.New(),
			UserID:         userID,
			SubscriptionID: queued.ID,
			Amount:         params.Amount,
			Status:         models.PaymentReleased,
		}
		if err := payments.Record(ctx, payment); err != nil {
			return nil, err
		}
		// the current subscription and the membership index stay untouched
		return &CreateSubscriptionResult{
			SubscriptionID: queued.ID,
			PaymentStatus:  models.PaymentReleased,
			Queued:         true,
		}, nil
	}

	sub := &models.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		CreatorID: params.CreatorID,
		TierName:  params.TierName,
		Type:      models.SubscriptionRegular,
		Status:    models.SubscriptionActive,
		StartDate: now,
		EndDate:   &newEnd,
	}
	if err := subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	// regular payments are never escrowed
	payment := &models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		SubscriptionID: sub.ID,
		Amount:         params.Amount,
		Status:         models.PaymentReleased,
	}
	if err := payments.Record(ctx, payment); err != nil {
		return nil, err
	}

	entry := &models.Membership{
		UserID:         userID,
		CreatorID:      params.CreatorID,
		SubscriptionID: sub.ID,
		TierName:       params.TierName,
		Active:         true,
	}
	if err := memberships.Replace(ctx, entry); err != nil {
		return nil, err
	}

	return &CreateSubscriptionResult{
		SubscriptionID: sub.ID,
		PaymentStatus:  models.PaymentReleased,
	}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID, subscriptionID uuid.UUID) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, common.NewTransientError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	subs := repositories.NewSubscriptionRepo(tx)
	payments := repositories.NewPaymentRepo(tx)
	memberships := repositories.NewMembershipRepo(tx)

	sub, err := subs.GetOwnedForUpdate(ctx, userID, subscriptionID)
	if err != nil {
		return 0, err
	}
	if sub.Status != models.SubscriptionActive {
		return 0, common.NewInvalidStateError("only an active subscription can be cancelled")
	}

	if err := subs.MarkCancelled(ctx, sub.ID); err != nil {
		return 0, err
	}

	// only un-settled escrow is recoverable; released payments stay released
	refunded, err := payments.TransitionBySubscription(ctx, sub.ID, models.PaymentHeld, models.PaymentRefunded)
	if err != nil {
		return 0, err
	}

	if err := memberships.Remove(ctx, userID, sub.CreatorID); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, common.NewTransientError(err)
	}
	return refunded, nil
}

// Refresh resumes the caller's paused regular subscriptions whose resumeAt has
// passed. Idempotent: the paused-status filter means a second pass, even a
// concurrent one, finds nothing left to resume.
func (s *subscriptionService) Refresh(ctx context.Context, userID uuid.UUID) (*RefreshResult, error) {
	now := time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewTransientError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	subs := repositories.NewSubscriptionRepo(tx)
	memberships := repositories.NewMembershipRepo(tx)

	due, err := subs.DueForResume(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{ResumedIDs: []uuid.UUID{}}
	for _, sub := range due {
		remainingMs := int64(0)
		if sub.RemainingMs != nil {
			remainingMs = *sub.RemainingMs
		}
		if remainingMs <= 0 {
			// a frozen duration should never be exhausted; guard against
			// clock skew by closing the record instead of resuming it
			if err := subs.CancelExhausted(ctx, sub.ID); err != nil {
				return nil, err
			}
			continue
		}

		newEnd := now.Add(time.Duration(remainingMs) * time.Millisecond)
		applied, err := subs.Resume(ctx, sub.ID, now, newEnd)
		if err != nil {
			return nil, err
		}
		if !applied {
			continue
		}

		// this is how a queued downgrade becomes the live membership
		entry := &models.Membership{
			UserID:         userID,
			CreatorID:      sub.CreatorID,
			SubscriptionID: sub.ID,
			TierName:       sub.TierName,
			Active:         true,
		}
		if err := memberships.Replace(ctx, entry); err != nil {
			return nil, err
		}

		result.ResumedIDs = append(result.ResumedIDs, sub.ID)
	}
	result.ResumedCount = len(result.ResumedIDs)

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewTransientError(err)
	}

	if result.ResumedCount > 0 {
		log.Printf("Resumed %d paused subscription(s) for user %s", result.ResumedCount, userID)
	}
	return result, nil
}

func (s *subscriptionService) ListMine(ctx context.Context, userID uuid.UUID) ([]*models.SubscriptionDetail, error) {
	return repositories.NewSubscriptionRepo(s.db).ListDetailedByUser(ctx, userID)
}

// ListPayments returns the payment history of one of the caller's
// subscriptions. The owner scope lives in the query, so a foreign
// subscription id just reads as an empty ledger.
func (s *subscriptionService) ListPayments(ctx context.Context, userID, subscriptionID uuid.UUID) ([]*models.Payment, error) {
	return repositories.NewPaymentRepo(s.db).ListBySubscription(ctx, userID, subscriptionID)
}

func (s *subscriptionService) ListMemberships(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	return repositories.NewMembershipRepo(s.db).ListForUser(ctx, userID)
}
