package background

import (
	"context"
	"log"
	"sync"
	"time"

	"adoteja/internal/repositories"
	"adoteja/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages background maintenance jobs
type JobScheduler struct {
	scheduler   gocron.Scheduler
	listingRepo repositories.ListingRepository
	store       services.MinioService
	jobs        map[string]gocron.Job

	mu sync.Mutex
	// Keys seen orphaned on the previous sweep, per bucket. A key is only
	// deleted after two consecutive sweeps without a database reference, so
	// an upload that has not committed its row yet survives the first pass.
	pendingOrphans map[string]map[string]struct{}
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(listingRepo repositories.ListingRepository, store services.MinioService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		listingRepo:    listingRepo,
		store:          store,
		jobs:           make(map[string]gocron.Job),
		pendingOrphans: make(map[string]map[string]struct{}),
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
	// Orphaned photo sweep - daily
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.sweepOrphanedPhotos, context.Background()),
		gocron.WithName("orphaned-photo-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create photo sweep job: %v", err)
	} else {
		js.jobs["photo-sweep"] = sweepJob
	}
}

// sweepOrphanedPhotos removes stored objects that no listing or user row
// references anymore
func (js *JobScheduler) sweepOrphanedPhotos(ctx context.Context) {
	referenced, err := js.listingRepo.PhotoKeys(ctx)
	if err != nil {
		log.Printf("Photo sweep: failed to load referenced keys: %v", err)
		return
	}

	refSet := make(map[string]struct{}, len(referenced))
	for _, key := range referenced {
		refSet[key] = struct{}{}
	}

	for _, bucket := range []string{services.ListingPhotoBucket, services.ProfilePhotoBucket} {
		js.sweepBucket(ctx, bucket, refSet)
	}
}

func (js *JobScheduler) sweepBucket(ctx context.Context, bucket string, referenced map[string]struct{}) {
	keys, err := js.store.ListImageKeys(ctx, bucket)
	if err != nil {
		log.Printf("Photo sweep: failed to list bucket %s: %v", bucket, err)
		return
	}

	js.mu.Lock()
	previous := js.pendingOrphans[bucket]
	current := make(map[string]struct{})
	js.pendingOrphans[bucket] = current
	js.mu.Unlock()

	deleted := 0
	for _, key := range keys {
		if _, ok := referenced[key]; ok {
			continue
		}
		if _, seenBefore := previous[key]; !seenBefore {
			js.mu.Lock()
			current[key] = struct{}{}
			js.mu.Unlock()
			continue
		}
		if err := js.store.DeleteImage(ctx, bucket, key); err != nil {
			log.Printf("Photo sweep: failed to delete %s/%s: %v", bucket, key, err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		log.Printf("Photo sweep: deleted %d orphaned objects from %s", deleted, bucket)
	}
}
