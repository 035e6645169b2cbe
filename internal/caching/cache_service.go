package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"patronhub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent. Callers fall back to the
// database; the cache is never authoritative.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	// Tier caching (hot path: every access check compares tier prices)
	GetCreatorTiers(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error)
	SetCreatorTiers(ctx context.Context, creatorID uuid.UUID, tiers []*models.Tier, ttl time.Duration) error
	DeleteCreatorTiers(ctx context.Context, creatorID uuid.UUID) error

	// Campaign caching
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error)
	SetCampaign(ctx context.Context, campaign *models.Campaign, ttl time.Duration) error
	DeleteCampaign(ctx context.Context, campaignID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	// Generic string operations for refresh-token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func tiersKey(creatorID uuid.UUID) string {
	return fmt.Sprintf("patronhub:tiers:%s", creatorID.String())
}

func campaignKey(campaignID uuid.UUID) string {
	return fmt.Sprintf("patronhub:campaign:%s", campaignID.String())
}

func (r *redisCacheService) GetCreatorTiers(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error) {
	data, err := r.client.Get(ctx, tiersKey(creatorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var tiers []*models.Tier
	if err := json.Unmarshal(data, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *redisCacheService) SetCreatorTiers(ctx context.Context, creatorID uuid.UUID, tiers []*models.Tier, ttl time.Duration) error {
	data, err := json.Marshal(tiers)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, tiersKey(creatorID), data, ttl).Err()
}

func (r *redisCacheService) DeleteCreatorTiers(ctx context.Context, creatorID uuid.UUID) error {
	return r.client.Del(ctx, tiersKey(creatorID)).Err()
}

func (r *redisCacheService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	data, err := r.client.Get(ctx, campaignKey(campaignID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	campaign := &models.Campaign{}
	if err := json.Unmarshal(data, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *redisCacheService) SetCampaign(ctx context.Context, campaign *models.Campaign, ttl time.Duration) error {
	data, err := json.Marshal(campaign)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, campaignKey(campaign.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteCampaign(ctx context.Context, campaignID uuid.UUID) error {
	return r.client.Del(ctx, campaignKey(campaignID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Get(ctx, fmt.Sprintf("patronhub:ratelimit:%s", key)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	fullKey := fmt.Sprintf("patronhub:ratelimit:%s", key)
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, fmt.Sprintf("patronhub:%s", key), value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, fmt.Sprintf("patronhub:%s", key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, fmt.Sprintf("patronhub:%s", key)).Err()
}

