package repositories

import (
	"context"
	"errors"

	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, creatorID, id uuid.UUID) error
	SetMedia(ctx context.Context, id uuid.UUID, images, videos []string) error
}

type postRepo struct {
	db Database
}

func NewPostRepo(db Database) PostRepository {
	return &postRepo{db: db}
}

const postColumns = `id, creator_id, title, body, images, videos, min_tier_name, campaign_id, is_locked_until_success, created_at, updated_at`

func scanPost(row pgx.Row) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.CreatorID, &p.Title, &p.Body, &p.Images, &p.Videos, &p.MinTierName, &p.CampaignID, &p.IsLockedUntilSuccess, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("post")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, creator_id, title, body, images, videos, min_tier_name, campaign_id, is_locked_until_success, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, post.ID, post.CreatorID, post.Title, post.Body, post.Images, post.Videos, post.MinTierName, post.CampaignID, post.IsLockedUntilSuccess)
	return err
}

func (r *postRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRow(ctx, query, id))
}

func (r *postRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE creator_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p := &models.Post{}
		if err := rows.Scan(&p.ID, &p.CreatorID, &p.Title, &p.Body, &p.Images, &p.Videos, &p.MinTierName, &p.CampaignID, &p.IsLockedUntilSuccess, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepo) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = $1, body = $2, min_tier_name = $3, campaign_id = $4, is_locked_until_success = $5, updated_at = NOW()
		WHERE id = $6 AND creator_id = $7
	`
	tag, err := r.db.Exec(ctx, query, post.Title, post.Body, post.MinTierName, post.CampaignID, post.IsLockedUntilSuccess, post.ID, post.CreatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("post")
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1 AND creator_id = $2`
	tag, err := r.db.Exec(ctx, query, id, creatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("post")
	}
	return nil
}

func (r *postRepo) SetMedia(ctx context.Context, id uuid.UUID, images, videos []string) error {
	query := `UPDATE posts SET images = $1, videos = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.Exec(ctx, query, images, videos, id)
	return err
}
