package repositories

import (
	"context"
	"errors"
	"time"

	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	// GetOwnedForUpdate loads a subscription scoped to its owner and locks the
	// row. A foreign subscription reads as not found.
	GetOwnedForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Subscription, error)
	// CurrentActiveRegular returns the live regular subscription for
	// (user, creator), locked, or nil when none exists.
	CurrentActiveRegular(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) error
	// Freeze pauses a live subscription, banking remainingMs until resumeAt.
	Freeze(ctx context.Context, id uuid.UUID, remainingMs int64, resumeAt time.Time) error
	// Resume reactivates a paused subscription for the given window. The
	// status predicate keeps a concurrent refresh from resuming it twice.
	Resume(ctx context.Context, id uuid.UUID, start, end time.Time) (bool, error)
	// CancelExhausted closes a paused subscription whose banked duration is gone.
	CancelExhausted(ctx context.Context, id uuid.UUID) error
	// DueForResume returns the user's paused regular subscriptions whose
	// resumeAt has passed, locked for the transaction.
	DueForResume(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Subscription, error)
	// RefundActiveByCampaign bulk-refunds a failed campaign's live contributions.
	RefundActiveByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error)
	ListDetailedByUser(ctx context.Context, userID uuid.UUID) ([]*models.SubscriptionDetail, error)
}

type subscriptionRepo struct {
	db Database
}

func NewSubscriptionRepo(db Database) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, user_id, creator_id, campaign_id, tier_name, type, status, start_date, end_date, remaining_ms, resume_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.CreatorID, &s.CampaignID, &s.TierName, &s.Type, &s.Status, &s.StartDate, &s.EndDate, &s.RemainingMs, &s.ResumeAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, creator_id, campaign_id, tier_name, type, status, start_date, end_date, remaining_ms, resume_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, sub.ID, sub.UserID, sub.CreatorID, sub.CampaignID, sub.TierName, sub.Type, sub.Status, sub.StartDate, sub.EndDate, sub.RemainingMs, sub.ResumeAt)
	return err
}

func (r *subscriptionRepo) GetOwnedForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND user_id = $2 FOR UPDATE`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("subscription")
	}
	return sub, err
}

func (r *subscriptionRepo) CurrentActiveRegular(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND creator_id = $2 AND type = 'regular' AND status = 'active' AND end_date IS NOT NULL
		FOR UPDATE
	`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, userID, creatorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (r *subscriptionRepo) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE subscriptions SET status = 'cancelled', updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *subscriptionRepo) Freeze(ctx context.Context, id uuid.UUID, remainingMs int64, resumeAt time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = 'paused', remaining_ms = $1, resume_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, remainingMs, resumeAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewInvalidStateError("subscription is no longer active")
	}
	return nil
}

func (r *subscriptionRepo) Resume(ctx context.Context, id uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		UPDATE subscriptions
		SET status = 'active', start_date = $1, end_date = $2, remaining_ms = NULL, resume_at = NULL, updated_at = NOW()
		WHERE id = $3 AND status = 'paused'
	`
	tag, err := r.db.Exec(ctx, query, start, end, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *subscriptionRepo) CancelExhausted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE subscriptions
		SET status = 'cancelled', remaining_ms = NULL, resume_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'paused'
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *subscriptionRepo) DueForResume(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND type = 'regular' AND status = 'paused' AND resume_at <= $2
		FOR UPDATE
	`
	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		s := &models.Subscription{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatorID, &s.CampaignID, &s.TierName, &s.Type, &s.Status, &s.StartDate, &s.EndDate, &s.RemainingMs, &s.ResumeAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *subscriptionRepo) RefundActiveByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = 'refunded', updated_at = NOW()
		WHERE campaign_id = $1 AND type = 'crowdfunding' AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, campaignID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionRepo) ListDetailedByUser(ctx context.Context, userID uuid.UUID) ([]*models.SubscriptionDetail, error) {
	query := `
		SELECT s.id, s.user_id, s.creator_id, s.campaign_id, s.tier_name, s.type, s.status,
		       s.start_date, s.end_date, s.remaining_ms, s.resume_at, s.created_at, s.updated_at,
		       u.id, u.name, u.role,
		       c.id, c.title, c.status, c.current_amount, c.target_amount
		FROM subscriptions s
		LEFT JOIN users u ON u.id = s.creator_id
		LEFT JOIN campaigns c ON c.id = s.campaign_id
		WHERE s.user_id = $1
		ORDER BY s.start_date DESC, s.id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*models.SubscriptionDetail
	for rows.Next() {
		d := &models.SubscriptionDetail{}
		var creatorID *uuid.UUID
		var creatorName, creatorRole *string
		var campaignID *uuid.UUID
		var campaignTitle, campaignStatus *string
		var campaignCurrent, campaignTarget *int64
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.CreatorID, &d.CampaignID, &d.TierName, &d.Type, &d.Status,
			&d.StartDate, &d.EndDate, &d.RemainingMs, &d.ResumeAt, &d.CreatedAt, &d.UpdatedAt,
			&creatorID, &creatorName, &creatorRole,
			&campaignID, &campaignTitle, &campaignStatus, &campaignCurrent, &campaignTarget,
		); err != nil {
			return nil, err
		}
		if creatorID != nil {
			d.Creator = &models.PublicUser{ID: *creatorID, Name: *creatorName, Role: *creatorRole}
		}
		if campaignID != nil {
			d.Campaign = &models.CampaignSummary{
				ID:            *campaignID,
				Title:         *campaignTitle,
				Status:        *campaignStatus,
				CurrentAmount: *campaignCurrent,
				TargetAmount:  *campaignTarget,
			}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
