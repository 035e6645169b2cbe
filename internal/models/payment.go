package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentHeld     = "held"
	PaymentReleased = "released"
	PaymentRefunded = "refunded"
)

// Payment records one money movement. Status is monotonic: held may become
// released or refunded, released and refunded are terminal.
type Payment struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	SubscriptionID uuid.UUID  `json:"subscription_id" db:"subscription_id"`
	CampaignID     *uuid.UUID `json:"campaign_id" db:"campaign_id"`
	Amount         int64      `json:"amount" db:"amount"`
	Status         string     `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
