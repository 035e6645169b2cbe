package repositories

import (
	"context"

	"patronhub/internal/models"

	"github.com/google/uuid"
)

// MembershipRepository maintains the per-user "current membership per creator"
// projection. Write methods must only ever be called from inside a
// subscription-service transaction; nothing else may edit this table.
type MembershipRepository interface {
	// Replace removes any entry for (user, creator) and inserts the new one,
	// keeping at most one entry per creator.
	Replace(ctx context.Context, entry *models.Membership) error
	Remove(ctx context.Context, userID, creatorID uuid.UUID) error
	// ListActiveForCreator returns every active entry for (user, creator).
	// The invariant says at most one exists; callers still handle multiples.
	ListActiveForCreator(ctx context.Context, userID, creatorID uuid.UUID) ([]*models.Membership, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error)
}

type membershipRepo struct {
	db Database
}

func NewMembershipRepo(db Database) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Replace(ctx context.Context, entry *models.Membership) error {
	del := `DELETE FROM memberships WHERE user_id = $1 AND creator_id = $2`
	if _, err := r.db.Exec(ctx, del, entry.UserID, entry.CreatorID); err != nil {
		return err
	}
	ins := `
		INSERT INTO memberships (user_id, creator_id, subscription_id, tier_name, active)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, ins, entry.UserID, entry.CreatorID, entry.SubscriptionID, entry.TierName, entry.Active)
	return err
}

func (r *membershipRepo) Remove(ctx context.Context, userID, creatorID uuid.UUID) error {
	query := `DELETE FROM memberships WHERE user_id = $1 AND creator_id = $2`
	_, err := r.db.Exec(ctx, query, userID, creatorID)
	return err
}

func (r *membershipRepo) ListActiveForCreator(ctx context.Context, userID, creatorID uuid.UUID) ([]*models.Membership, error) {
	query := `
		SELECT user_id, creator_id, subscription_id, tier_name, active
		FROM memberships
		WHERE user_id = $1 AND creator_id = $2 AND active = TRUE
	`
	rows, err := r.db.Query(ctx, query, userID, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.UserID, &m.CreatorID, &m.SubscriptionID, &m.TierName, &m.Active); err != nil {
			return nil, err
		}
		entries = append(entries, m)
	}
	return entries, rows.Err()
}

func (r *membershipRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	query := `
		SELECT user_id, creator_id, subscription_id, tier_name, active
		FROM memberships
		WHERE user_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.UserID, &m.CreatorID, &m.SubscriptionID, &m.TierName, &m.Active); err != nil {
			return nil, err
		}
		entries = append(entries, m)
	}
	return entries, rows.Err()
}
