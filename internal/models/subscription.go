package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionRegular      = "regular"
	SubscriptionCrowdfunding = "crowdfunding"
)

const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCancelled = "cancelled"
	SubscriptionRefunded  = "refunded"
)

// Subscription is a supporter's membership with a creator. TierName is a live
// reference into the creator's tier catalog, not a foreign key. RemainingMs and
// ResumeAt are only meaningful while the subscription is paused: they hold the
// frozen unexpired duration and the instant it becomes resumable.
type Subscription struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	CreatorID   uuid.UUID  `json:"creator_id" db:"creator_id"`
	CampaignID  *uuid.UUID `json:"campaign_id" db:"campaign_id"`
	TierName    string     `json:"tier_name" db:"tier_name"`
	Type        string     `json:"type" db:"type"`
	Status      string     `json:"status" db:"status"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date" db:"end_date"`
	RemainingMs *int64     `json:"remaining_ms" db:"remaining_ms"`
	ResumeAt    *time.Time `json:"resume_at" db:"resume_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// SubscriptionDetail is the enriched row returned by the "my subscriptions"
// listing: the subscription plus creator identity and campaign progress.
type SubscriptionDetail struct {
	Subscription
	Creator  *PublicUser      `json:"creator,omitempty"`
	Campaign *CampaignSummary `json:"campaign,omitempty"`
}

// CampaignSummary is the campaign slice exposed alongside a subscription.
type CampaignSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	CurrentAmount int64     `json:"current_amount"`
	TargetAmount  int64     `json:"target_amount"`
}
