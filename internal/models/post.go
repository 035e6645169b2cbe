package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is gated content. MinTierName names the cheapest tier allowed to read
// the body; IsLockedUntilSuccess additionally requires the linked campaign to
// have finished successfully.
type Post struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	CreatorID            uuid.UUID  `json:"creator_id" db:"creator_id"`
	Title                string     `json:"title" db:"title"`
	Body                 string     `json:"body" db:"body"`
	Images               []string   `json:"images" db:"images"`
	Videos               []string   `json:"videos" db:"videos"`
	MinTierName          string     `json:"min_tier_name" db:"min_tier_name"`
	CampaignID           *uuid.UUID `json:"campaign_id" db:"campaign_id"`
	IsLockedUntilSuccess bool       `json:"is_locked_until_success" db:"is_locked_until_success"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}
