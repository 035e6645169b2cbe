package repositories

import (
	"context"

	"patronhub/internal/models"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Record(ctx context.Context, payment *models.Payment) error
	ListBySubscription(ctx context.Context, userID, subscriptionID uuid.UUID) ([]*models.Payment, error)
	// TransitionBySubscription moves every payment of a subscription whose
	// status still equals from into to, and reports how many moved.
	TransitionBySubscription(ctx context.Context, subscriptionID uuid.UUID, from, to string) (int64, error)
	// TransitionByCampaign is the settlement bulk path: mass release or refund
	// of a campaign's escrow.
	TransitionByCampaign(ctx context.Context, campaignID uuid.UUID, from, to string) (int64, error)
}

type paymentRepo struct {
	db Database
}

func NewPaymentRepo(db Database) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Record(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, subscription_id, campaign_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.UserID, payment.SubscriptionID, payment.CampaignID, payment.Amount, payment.Status)
	return err
}

func (r *paymentRepo) ListBySubscription(ctx context.Context, userID, subscriptionID uuid.UUID) ([]*models.Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, campaign_id, amount, status, created_at, updated_at
		FROM payments
		WHERE user_id = $1 AND subscription_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.SubscriptionID, &p.CampaignID, &p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// The status predicate makes both transitions conditional updates: a payment
// that already left the from state is never touched, so held -> released and
// held -> refunded can never reverse a settled payment.

func (r *paymentRepo) TransitionBySubscription(ctx context.Context, subscriptionID uuid.UUID, from, to string) (int64, error) {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE subscription_id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, to, subscriptionID, from)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *paymentRepo) TransitionByCampaign(ctx context.Context, campaignID uuid.UUID, from, to string) (int64, error) {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE campaign_id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, to, campaignID, from)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
