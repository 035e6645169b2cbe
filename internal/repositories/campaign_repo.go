package repositories

import (
	"context"
	"errors"

	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CampaignFilter narrows campaign listings.
type CampaignFilter struct {
	Status string
	Page   int
	Limit  int
	// SortDesc orders by created_at descending when true (the default listing order).
	SortDesc bool
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	// GetOwnedForUpdate loads a campaign scoped to its owner and locks the row
	// for the rest of the transaction. Ownership is folded into the lookup so a
	// foreign campaign is indistinguishable from a missing one.
	GetOwnedForUpdate(ctx context.Context, creatorID, id uuid.UUID) (*models.Campaign, error)
	// GetByIDForUpdate locks a campaign row so a contribution cannot race a
	// concurrent settlement's status flip.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]*models.Campaign, int, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, creatorID, id uuid.UUID) error
	IncrementRaised(ctx context.Context, id uuid.UUID, amount int64) error
	// SetStatus finishes a campaign: the predicate re-checks status = 'active'
	// so a concurrent settlement cannot apply the transition twice.
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type campaignRepo struct {
	db Database
}

func NewCampaignRepo(db Database) CampaignRepository {
	return &campaignRepo{db: db}
}

const campaignColumns = `id, creator_id, title, description, target_amount, current_amount, status, start_date, end_date, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.TargetAmount, &c.CurrentAmount, &c.Status, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("campaign")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *campaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, creator_id, title, description, target_amount, current_amount, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 'active', $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, campaign.ID, campaign.CreatorID, campaign.Title, campaign.Description, campaign.TargetAmount, campaign.StartDate, campaign.EndDate)
	return err
}

func (r *campaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	return scanCampaign(r.db.QueryRow(ctx, query, id))
}

func (r *campaignRepo) GetOwnedForUpdate(ctx context.Context, creatorID, id uuid.UUID) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 AND creator_id = $2 FOR UPDATE`
	return scanCampaign(r.db.QueryRow(ctx, query, id, creatorID))
}

func (r *campaignRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 FOR UPDATE`
	return scanCampaign(r.db.QueryRow(ctx, query, id))
}

func (r *campaignRepo) List(ctx context.Context, filter CampaignFilter) ([]*models.Campaign, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 6
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	order := "ASC"
	if filter.SortDesc {
		order = "DESC"
	}

	query := `
		SELECT ` + campaignColumns + `, COUNT(*) OVER() AS total
		FROM campaigns
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at ` + order + `
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, filter.Status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	total := 0
	for rows.Next() {
		c := &models.Campaign{}
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.TargetAmount, &c.CurrentAmount, &c.Status, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, total, rows.Err()
}

func (r *campaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET title = $1, description = $2, target_amount = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $6 AND creator_id = $7
	`
	tag, err := r.db.Exec(ctx, query, campaign.Title, campaign.Description, campaign.TargetAmount, campaign.StartDate, campaign.EndDate, campaign.ID, campaign.CreatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("campaign")
	}
	return nil
}

func (r *campaignRepo) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	query := `DELETE FROM campaigns WHERE id = $1 AND creator_id = $2 AND status = 'active'`
	tag, err := r.db.Exec(ctx, query, id, creatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("campaign")
	}
	return nil
}

func (r *campaignRepo) IncrementRaised(ctx context.Context, id uuid.UUID, amount int64) error {
	query := `UPDATE campaigns SET current_amount = current_amount + $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, amount, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("campaign")
	}
	return nil
}

func (r *campaignRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2 AND status = 'active'`
	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewInvalidStateError("campaign already finished")
	}
	return nil
}
