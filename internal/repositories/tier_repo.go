package repositories

import (
	"context"
	"errors"

	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TierRepository interface {
	Create(ctx context.Context, tier *models.Tier) error
	GetByName(ctx context.Context, creatorID uuid.UUID, name string) (*models.Tier, error)
	GetByID(ctx context.Context, creatorID, id uuid.UUID) (*models.Tier, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error)
	Update(ctx context.Context, tier *models.Tier) error
	Delete(ctx context.Context, creatorID, id uuid.UUID) error
}

type tierRepo struct {
	db Database
}

func NewTierRepo(db Database) TierRepository {
	return &tierRepo{db: db}
}

func (r *tierRepo) Create(ctx context.Context, tier *models.Tier) error {
	query := `
		INSERT INTO tiers (id, creator_id, name, price, perks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (creator_id, name) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, tier.ID, tier.CreatorID, tier.Name, tier.Price, tier.Perks)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewConflictError("tier %q already exists", tier.Name)
	}
	return nil
}

func (r *tierRepo) GetByName(ctx context.Context, creatorID uuid.UUID, name string) (*models.Tier, error) {
	tier := &models.Tier{}
	query := `
		SELECT id, creator_id, name, price, perks, created_at, updated_at
		FROM tiers
		WHERE creator_id = $1 AND name = $2
	`
	err := r.db.QueryRow(ctx, query, creatorID, name).Scan(&tier.ID, &tier.CreatorID, &tier.Name, &tier.Price, &tier.Perks, &tier.CreatedAt, &tier.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("tier")
	}
	if err != nil {
		return nil, err
	}
	return tier, nil
}

func (r *tierRepo) GetByID(ctx context.Context, creatorID, id uuid.UUID) (*models.Tier, error) {
	tier := &models.Tier{}
	query := `
		SELECT id, creator_id, name, price, perks, created_at, updated_at
		FROM tiers
		WHERE creator_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, creatorID, id).Scan(&tier.ID, &tier.CreatorID, &tier.Name, &tier.Price, &tier.Perks, &tier.CreatedAt, &tier.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("tier")
	}
	if err != nil {
		return nil, err
	}
	return tier, nil
}

func (r *tierRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error) {
	query := `
		SELECT id, creator_id, name, price, perks, created_at, updated_at
		FROM tiers
		WHERE creator_id = $1
		ORDER BY price ASC
	`
	rows, err := r.db.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []*models.Tier
	for rows.Next() {
		tier := &models.Tier{}
		if err := rows.Scan(&tier.ID, &tier.CreatorID, &tier.Name, &tier.Price, &tier.Perks, &tier.CreatedAt, &tier.UpdatedAt); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

func (r *tierRepo) Update(ctx context.Context, tier *models.Tier) error {
	query := `
		UPDATE tiers
		SET price = $1, perks = $2, updated_at = NOW()
		WHERE creator_id = $3 AND id = $4
	`
	tag, err := r.db.Exec(ctx, query, tier.Price, tier.Perks, tier.CreatorID, tier.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("tier")
	}
	return nil
}

func (r *tierRepo) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	query := `DELETE FROM tiers WHERE creator_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, creatorID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("tier")
	}
	return nil
}
