package services

import (
	"time"

	"adoteja/internal/models"
)

// ListingValidity is how long a listing stays publishable before the owner
// must reactivate it.
const ListingValidity = 30 * 24 * time.Hour

// LifecycleEngine repairs and advances the active/expiry state of listings.
// Expiration is lazy: there is no background sweep, every read path runs
// Reconcile and batch-persists whatever it dirtied.
type LifecycleEngine struct{}

func NewLifecycleEngine() *LifecycleEngine {
	return &LifecycleEngine{}
}

// Reconcile repairs a listing in place and reports whether the row needs
// persisting. It is idempotent: a second pass at the same instant changes
// nothing and returns false.
//
// A missing expiry, or one earlier than the creation time, resets to
// created_at + 30 days. An active listing whose expiry has been reached
// (inclusive boundary) is flipped inactive. The engine is the only writer
// that flips Active false.
func (e *LifecycleEngine) Reconcile(listing *models.Listing, now time.Time) bool {
	dirty := false

	if listing.ExpiresAt == nil || listing.ExpiresAt.Before(listing.CreatedAt) {
		expires := listing.CreatedAt.Add(ListingValidity)
		listing.ExpiresAt = &expires
		dirty = true
	}

	if listing.Active && !listing.ExpiresAt.After(now) {
		listing.Active = false
		dirty = true
	}

	return dirty
}

// ReconcileAll reconciles a batch and returns the dirty subset for the caller
// to persist in one write after the read pass. Listings share no state, so
// order does not matter.
func (e *LifecycleEngine) ReconcileAll(listings []*models.Listing, now time.Time) []*models.Listing {
	var dirty []*models.Listing
	for _, listing := range listings {
		if e.Reconcile(listing, now) {
			dirty = append(dirty, listing)
		}
	}
	return dirty
}

// DaysRemaining reports whole days until expiry, floored at zero. Display
// only; it never drives the active/expire decision.
func (e *LifecycleEngine) DaysRemaining(listing *models.Listing, now time.Time) int {
	if listing.ExpiresAt == nil {
		return 0
	}
	days := int(listing.ExpiresAt.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Reactivate republishes a listing for a fresh validity window regardless of
// its prior expiry. Owner-only; callers go through the ownership check first.
func (e *LifecycleEngine) Reactivate(listing *models.Listing, now time.Time) {
	expires := now.Add(ListingValidity)
	listing.Active = true
	listing.ExpiresAt = &expires
}
