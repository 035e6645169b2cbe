package services

import (
	"testing"

	"patronhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDecideRegularChange(t *testing.T) {
	gold := &models.Subscription{TierName: "Gold"}

	tests := []struct {
		name           string
		current        *models.Subscription
		currentPrice   int64
		requestedPrice int64
		requestedTier  string
		want           regularChange
	}{
		{"no live subscription", nil, 0, 1500, "Gold", changeFresh},
		{"same tier rejected", gold, 1500, 1500, "Gold", changeSameTier},
		{"pricier tier upgrades", gold, 1500, 3000, "Platinum", changeUpgrade},
		{"cheaper tier downgrades", gold, 1500, 500, "Bronze", changeDowngrade},
		{"equal price counts as downgrade", gold, 1500, 1500, "Silver", changeDowngrade},
		{"stale live tier makes any priced tier an upgrade", gold, 0, 500, "Bronze", changeUpgrade},
		{"same tier wins over price comparison", gold, 0, 1500, "Gold", changeSameTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideRegularChange(tt.current, tt.currentPrice, tt.requestedPrice, tt.requestedTier)
			assert.Equal(t, tt.want, got)
		})
	}
}
