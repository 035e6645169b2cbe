package services

import "patronhub/internal/models"

// regularChange names the transition taken when a user creates a regular
// subscription while possibly holding one already. Each value maps to a fixed
// side-effect set in the subscription service.
type regularChange int

const (
	// changeFresh: no live subscription, create a new active one.
	changeFresh regularChange = iota
	// changeSameTier: duplicate of the live tier, rejected.
	changeSameTier
	// changeUpgrade: pricier tier pre-empts, the live subscription is frozen
	// and the new one starts immediately.
	changeUpgrade
	// changeDowngrade: cheaper tier queues behind the live subscription.
	changeDowngrade
)

// decideRegularChange keys the transition on the live subscription and the
// price comparison. A live tier that no longer resolves counts as price 0, so
// any priced tier is an upgrade over it.
func decideRegularChange(current *models.Subscription, currentPrice, requestedPrice int64, requestedTier string) regularChange {
	if current == nil {
		return changeFresh
	}
	if current.TierName == requestedTier {
		return changeSameTier
	}
	if requestedPrice > currentPrice {
		return changeUpgrade
	}
	return changeDowngrade
}
