package background

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"patronhub/internal/caching"
	"patronhub/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages recurring maintenance jobs. Subscription resumption is
// deliberately not scheduled here: paused subscriptions resume lazily when the
// owner calls refresh, so a crashed worker can never corrupt lifecycle state.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	cacheSvc     caching.CacheService
	campaignRepo repositories.CampaignRepository
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(cacheSvc caching.CacheService, campaignRepo repositories.CampaignRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		cacheSvc:     cacheSvc,
		campaignRepo: campaignRepo,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	warmJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.warmCampaignCache, context.Background()),
		gocron.WithName("campaign-cache-warm"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create campaign cache warm job: %v", err)
	} else {
		js.registerJob("campaign-cache-warm", warmJob)
	}

	cleanupJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.cleanupCache, context.Background()),
		gocron.WithName("cache-cleanup"),
	)
	if err != nil {
		log.Printf("Failed to create cache cleanup job: %v", err)
	} else {
		js.registerJob("cache-cleanup", cleanupJob)
	}
}

func (js *JobScheduler) registerJob(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[name] = job
}

// warmCampaignCache pre-populates the cache with the first page of active
// campaigns so the public listing stays fast after invalidations.
func (js *JobScheduler) warmCampaignCache(ctx context.Context) {
	campaigns, _, err := js.campaignRepo.List(ctx, repositories.CampaignFilter{
		Status:   "active",
		Page:     1,
		SortDesc: true,
	})
	if err != nil {
		log.Printf("Campaign cache warm failed: %v", err)
		return
	}

	warmed := 0
	for _, campaign := range campaigns {
		if err := js.cacheSvc.SetCampaign(ctx, campaign, 5*time.Minute); err != nil {
			log.Printf("Failed to warm campaign %s: %v", campaign.ID, err)
			continue
		}
		warmed++
	}
	log.Printf("Campaign cache warm completed: %d campaigns cached", warmed)
}

// cleanupCache is a safety net; Redis expires keys on its own, this catches
// anything written without a TTL.
func (js *JobScheduler) cleanupCache(ctx context.Context) {
	log.Printf("Starting cache cleanup")
	if _, err := js.cacheSvc.GetString(ctx, "healthcheck"); err != nil && !errors.Is(err, caching.ErrCacheMiss) {
		log.Printf("Cache cleanup skipped, redis unreachable: %v", err)
		return
	}
	log.Printf("Cache cleanup completed (Redis handles TTL automatically)")
}
