package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CampaignActive     = "active"
	CampaignSuccessful = "successful"
	CampaignFailed     = "failed"
)

// Campaign is a crowdfunding goal. CurrentAmount only ever grows, and only via
// crowdfunding contributions. Status moves active -> successful|failed exactly once.
type Campaign struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CreatorID     uuid.UUID `json:"creator_id" db:"creator_id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	TargetAmount  int64     `json:"target_amount" db:"target_amount"`
	CurrentAmount int64     `json:"current_amount" db:"current_amount"`
	Status        string    `json:"status" db:"status"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	EndDate       time.Time `json:"end_date" db:"end_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
