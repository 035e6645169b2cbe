package models

import "github.com/google/uuid"

// Membership is the denormalized "current active subscription per creator"
// projection used for access checks. It is derived state: only the subscription
// service writes it, always inside the transaction that moves the authoritative
// subscription row. At most one entry should exist per (user, creator).
type Membership struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	CreatorID      uuid.UUID `json:"creator_id" db:"creator_id"`
	SubscriptionID uuid.UUID `json:"subscription_id" db:"subscription_id"`
	TierName       string    `json:"tier_name" db:"tier_name"`
	Active         bool      `json:"active" db:"active"`
}
