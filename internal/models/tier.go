package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a named price level owned by a creator. Price is in minor units.
// (creator_id, name) is unique; subscriptions and posts reference tiers by name.
type Tier struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatorID uuid.UUID `json:"creator_id" db:"creator_id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Perks     []string  `json:"perks" db:"perks"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
