package services

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"adoteja/internal/caching"
	"adoteja/internal/models"
	"adoteja/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	listingCacheTTL  = 15 * time.Minute
	locationCacheTTL = 5 * time.Minute
)

// TriStateFilterMode selects how vaccinated/neutered browse filters match.
type TriStateFilterMode string

const (
	// TriStateExact matches the stored tri-state value exactly.
	TriStateExact TriStateFilterMode = "exact"
	// TriStateYesOnly applies the filter only when "yes" is requested;
	// "no"/"unknown" requests are ignored.
	TriStateYesOnly TriStateFilterMode = "yes_only"
)

// ListingInput carries the owner-editable listing fields.
type ListingInput struct {
	Name       string
	Species    string
	Breed      *string
	Color      *string
	Sex        *string
	ApproxAge  *string
	Vaccinated models.TriState
	Neutered   models.TriState
}

// PhotoUpload is an optional photo attached to a create/update.
type PhotoUpload struct {
	Filename string
	Reader   io.Reader
}

// ListingView is a listing plus its display-only remaining days.
type ListingView struct {
	*models.Listing
	DaysRemaining int `json:"days_remaining"`
}

type ListingService interface {
	Browse(ctx context.Context, filter *models.ListingFilter, now time.Time) ([]*ListingView, []models.LocationOption, error)
	Get(ctx context.Context, listingID uuid.UUID, now time.Time) (*ListingView, error)
	Mine(ctx context.Context, ownerID uuid.UUID, now time.Time) (active, inactive []*ListingView, err error)
	CreateOrUpdate(ctx context.Context, ownerID uuid.UUID, listingID *uuid.UUID, input *ListingInput, photo *PhotoUpload) (*models.Listing, error)
	Delete(ctx context.Context, listingID, actorID uuid.UUID) error
	Reactivate(ctx context.Context, listingID, actorID uuid.UUID, now time.Time) (*models.Listing, error)
}

type listingService struct {
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
	lifecycle   *LifecycleEngine
	media       MediaService
	cache       caching.CacheService
	triMode     TriStateFilterMode
}

func NewListingService(listingRepo repositories.ListingRepository, userRepo repositories.UserRepository, lifecycle *LifecycleEngine, media MediaService, cache caching.CacheService, triMode TriStateFilterMode) ListingService {
	if triMode != TriStateYesOnly {
		triMode = TriStateExact
	}
	return &listingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		lifecycle:   lifecycle,
		media:       media,
		cache:       cache,
		triMode:     triMode,
	}
}

// Browse returns the active listings matching the filter, newest first, plus
// the (state, city) options that currently have at least one active listing.
// The lifecycle pass runs over the fetched batch before the display filter,
// so a row whose expiry was reached is flipped, persisted and excluded within
// the same request.
func (s *listingService) Browse(ctx context.Context, filter *models.ListingFilter, now time.Time) ([]*ListingView, []models.LocationOption, error) {
	if filter == nil {
		filter = &models.ListingFilter{}
	}
	filter.ActiveOnly = true
	s.applyTriStateMode(filter)

	listings, err := s.listingRepo.Search(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	s.persistDirty(ctx, s.lifecycle.ReconcileAll(listings, now))

	views := make([]*ListingView, 0, len(listings))
	for _, listing := range listings {
		if !listing.Active {
			continue
		}
		views = append(views, &ListingView{Listing: listing, DaysRemaining: s.lifecycle.DaysRemaining(listing, now)})
	}

	options, err := s.locationOptions(ctx)
	if err != nil {
		return nil, nil, err
	}

	return views, options, nil
}

// Get returns one listing regardless of active state, lifecycle-reconciled.
func (s *listingService) Get(ctx context.Context, listingID uuid.UUID, now time.Time) (*ListingView, error) {
	if cached, err := s.cache.GetListing(ctx, listingID); cached != nil {
		if !s.lifecycle.Reconcile(cached, now) {
			return &ListingView{Listing: cached, DaysRemaining: s.lifecycle.DaysRemaining(cached, now)}, nil
		}
		// Stale cache entry; fall through to the store.
	} else if err != nil {
		log.Printf("Cache error for listing %s: %v", listingID.String(), err)
	}

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	s.persistDirty(ctx, s.lifecycle.ReconcileAll([]*models.Listing{listing}, now))

	if cacheErr := s.cache.SetListing(ctx, listing, listingCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache listing %s: %v", listing.ID.String(), cacheErr)
	}

	return &ListingView{Listing: listing, DaysRemaining: s.lifecycle.DaysRemaining(listing, now)}, nil
}

// Mine returns the owner's listings split into active and inactive. The
// owner scope has no activity restriction; expired listings show up in the
// inactive bucket so they can be reactivated.
func (s *listingService) Mine(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*ListingView, []*ListingView, error) {
	listings, err := s.listingRepo.Search(ctx, &models.ListingFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, nil, err
	}

	s.persistDirty(ctx, s.lifecycle.ReconcileAll(listings, now))

	var active, inactive []*ListingView
	for _, listing := range listings {
		view := &ListingView{Listing: listing, DaysRemaining: s.lifecycle.DaysRemaining(listing, now)}
		if listing.Active {
			active = append(active, view)
		} else {
			inactive = append(inactive, view)
		}
	}
	return active, inactive, nil
}

// CreateOrUpdate writes a new listing or overwrites an existing one in place.
// The photo step runs before the row write: if the photo fails, the listing
// fields are not saved at all. Location is re-copied from the owner's current
// profile on every save.
func (s *listingService) CreateOrUpdate(ctx context.Context, ownerID uuid.UUID, listingID *uuid.UUID, input *ListingInput, photo *PhotoUpload) (*models.Listing, error) {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var listing *models.Listing
	if listingID != nil {
		listing, err = s.getListing(ctx, *listingID)
		if err != nil {
			return nil, err
		}
		if err := authorizeOwner(listing, ownerID); err != nil {
			return nil, err
		}
	} else {
		now := time.Now().UTC()
		expires := now.Add(ListingValidity)
		listing = &models.Listing{
			ID:        uuid.New(),
			OwnerID:   ownerID,
			CreatedAt: now,
			Active:    true,
			ExpiresAt: &expires,
		}
	}

	if photo != nil {
		objectKey, err := s.media.StoreListingPhoto(ctx, listing.ID, photo.Filename, photo.Reader)
		if err != nil {
			return nil, err
		}
		listing.PhotoPath = &objectKey
	}

	listing.Name = input.Name
	listing.Species = input.Species
	listing.Breed = input.Breed
	listing.Color = input.Color
	listing.Sex = input.Sex
	listing.ApproxAge = input.ApproxAge
	listing.Vaccinated = normalizeTriState(input.Vaccinated)
	listing.Neutered = normalizeTriState(input.Neutered)
	listing.StateCode = derefString(owner.StateCode)
	listing.CityName = derefString(owner.CityName)

	if listingID != nil {
		err = s.listingRepo.Update(ctx, listing)
	} else {
		err = s.listingRepo.Create(ctx, listing)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, listing.ID)
	return listing, nil
}

// Delete hard-deletes a listing. Owner only. The stored photo is removed
// best-effort after the row is gone.
func (s *listingService) Delete(ctx context.Context, listingID, actorID uuid.UUID) error {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return err
	}
	if err := authorizeOwner(listing, actorID); err != nil {
		return err
	}

	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		return err
	}

	s.invalidate(ctx, listingID)

	if listing.PhotoPath != nil {
		if err := s.media.DeleteListingPhoto(ctx, *listing.PhotoPath); err != nil {
			log.Printf("Warning: failed to delete photo %s from storage: %v", *listing.PhotoPath, err)
		}
	}
	return nil
}

// Reactivate republishes an expired (or still-active) listing for a fresh
// validity window. Owner only; no limit on reactivation count.
func (s *listingService) Reactivate(ctx context.Context, listingID, actorID uuid.UUID, now time.Time) (*models.Listing, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(listing, actorID); err != nil {
		return nil, err
	}

	s.lifecycle.Reactivate(listing, now)
	if err := s.listingRepo.SaveLifecycle(ctx, []*models.Listing{listing}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, listingID)
	return listing, nil
}

func (s *listingService) getListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

// persistDirty batch-writes lifecycle repairs discovered during a read pass.
// Repairs are self-healing, so a failed write is logged and retried by the
// next read instead of failing the request.
func (s *listingService) persistDirty(ctx context.Context, dirty []*models.Listing) {
	if len(dirty) == 0 {
		return
	}
	if err := s.listingRepo.SaveLifecycle(ctx, dirty); err != nil {
		log.Printf("Failed to persist lifecycle repairs for %d listings: %v", len(dirty), err)
		return
	}
	for _, listing := range dirty {
		if cacheErr := s.cache.DeleteListing(ctx, listing.ID); cacheErr != nil {
			log.Printf("Failed to invalidate cache for listing %s: %v", listing.ID.String(), cacheErr)
		}
	}
	if cacheErr := s.cache.DeleteLocationOptions(ctx); cacheErr != nil {
		log.Printf("Failed to invalidate location options cache: %v", cacheErr)
	}
}

func (s *listingService) locationOptions(ctx context.Context) ([]models.LocationOption, error) {
	if cached, err := s.cache.GetLocationOptions(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for location options: %v", err)
	}

	options, err := s.listingRepo.ActiveLocations(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.SetLocationOptions(ctx, options, locationCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache location options: %v", cacheErr)
	}
	return options, nil
}

// applyTriStateMode resolves the configured vaccinated/neutered filter
// semantics before the filter reaches the store.
func (s *listingService) applyTriStateMode(filter *models.ListingFilter) {
	if s.triMode != TriStateYesOnly {
		return
	}
	if filter.Vaccinated != nil && *filter.Vaccinated != models.TriYes {
		filter.Vaccinated = nil
	}
	if filter.Neutered != nil && *filter.Neutered != models.TriYes {
		filter.Neutered = nil
	}
}

func (s *listingService) invalidate(ctx context.Context, listingID uuid.UUID) {
	if err := s.cache.DeleteListing(ctx, listingID); err != nil {
		log.Printf("Failed to invalidate cache for listing %s: %v", listingID.String(), err)
	}
	if err := s.cache.DeleteLocationOptions(ctx); err != nil {
		log.Printf("Failed to invalidate location options cache: %v", err)
	}
}

func normalizeTriState(t models.TriState) models.TriState {
	if !t.Valid() {
		return models.TriUnknown
	}
	return t
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
