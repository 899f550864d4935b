package repositories

import (
	"context"
	"fmt"

	"adoteja/internal/models"

	"github.com/google/uuid"
)

const listingColumns = `id, owner_id, name, species, breed, color, sex, approx_age, vaccinated, neutered, photo_path, state_code, city_name, created_at, active, expires_at`

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter *models.ListingFilter) ([]*models.Listing, error)
	SaveLifecycle(ctx context.Context, listings []*models.Listing) error
	ActiveLocations(ctx context.Context) ([]models.LocationOption, error)
	PhotoKeys(ctx context.Context) ([]string, error)
}

type listingRepo struct {
	db Database
}

func NewListingRepo(db Database) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.Exec(ctx, query,
		listing.ID, listing.OwnerID, listing.Name, listing.Species, listing.Breed, listing.Color,
		listing.Sex, listing.ApproxAge, listing.Vaccinated, listing.Neutered, listing.PhotoPath,
		listing.StateCode, listing.CityName, listing.CreatedAt, listing.Active, listing.ExpiresAt)
	return err
}

func (r *listingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing := &models.Listing{}
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&listing.ID, &listing.OwnerID, &listing.Name, &listing.Species, &listing.Breed, &listing.Color,
		&listing.Sex, &listing.ApproxAge, &listing.Vaccinated, &listing.Neutered, &listing.PhotoPath,
		&listing.StateCode, &listing.CityName, &listing.CreatedAt, &listing.Active, &listing.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *listingRepo) Update(ctx context.Context, listing *models.Listing) error {
	query := `
		UPDATE listings
		SET name = $1, species = $2, breed = $3, color = $4, sex = $5, approx_age = $6,
		    vaccinated = $7, neutered = $8, photo_path = $9, state_code = $10, city_name = $11,
		    active = $12, expires_at = $13
		WHERE id = $14
	`
	_, err := r.db.Exec(ctx, query,
		listing.Name, listing.Species, listing.Breed, listing.Color, listing.Sex, listing.ApproxAge,
		listing.Vaccinated, listing.Neutered, listing.PhotoPath, listing.StateCode, listing.CityName,
		listing.Active, listing.ExpiresAt, listing.ID)
	return err
}

func (r *listingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM listings WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// Search builds the filtered listing query. Every present filter is applied
// as a conjunctive predicate; absent filters never exclude rows. Ordering by
// created_at DESC is a hard contract for all listing views.
func (r *listingRepo) Search(ctx context.Context, filter *models.ListingFilter) ([]*models.Listing, error) {
	if filter == nil {
		filter = &models.ListingFilter{}
	}

	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	args := []any{}
	n := 0

	if filter.ActiveOnly {
		query += ` AND active = TRUE`
	}
	if filter.OwnerID != nil {
		n++
		query += fmt.Sprintf(` AND owner_id = $%d`, n)
		args = append(args, *filter.OwnerID)
	}
	if filter.Species != "" {
		n++
		query += fmt.Sprintf(` AND species = $%d`, n)
		args = append(args, filter.Species)
	}
	if filter.Breed != "" {
		n++
		query += fmt.Sprintf(` AND breed = $%d`, n)
		args = append(args, filter.Breed)
	}
	if filter.Sex != "" {
		n++
		query += fmt.Sprintf(` AND sex = $%d`, n)
		args = append(args, filter.Sex)
	}
	if filter.Vaccinated != nil {
		n++
		query += fmt.Sprintf(` AND vaccinated = $%d`, n)
		args = append(args, *filter.Vaccinated)
	}
	if filter.Neutered != nil {
		n++
		query += fmt.Sprintf(` AND neutered = $%d`, n)
		args = append(args, *filter.Neutered)
	}
	if filter.StateCode != "" {
		n++
		query += fmt.Sprintf(` AND state_code = $%d`, n)
		args = append(args, filter.StateCode)
	}
	if filter.CityName != "" {
		n++
		query += fmt.Sprintf(` AND city_name = $%d`, n)
		args = append(args, filter.CityName)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing := &models.Listing{}
		if err := rows.Scan(
			&listing.ID, &listing.OwnerID, &listing.Name, &listing.Species, &listing.Breed, &listing.Color,
			&listing.Sex, &listing.ApproxAge, &listing.Vaccinated, &listing.Neutered, &listing.PhotoPath,
			&listing.StateCode, &listing.CityName, &listing.CreatedAt, &listing.Active, &listing.ExpiresAt); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// SaveLifecycle persists the active/expires_at columns for a batch of
// reconciled listings. Last writer wins; there is no concurrency token, races
// with a concurrent edit are tolerated by re-reconciling on the next read.
func (r *listingRepo) SaveLifecycle(ctx context.Context, listings []*models.Listing) error {
	query := `UPDATE listings SET active = $1, expires_at = $2 WHERE id = $3`
	for _, listing := range listings {
		if _, err := r.db.Exec(ctx, query, listing.Active, listing.ExpiresAt, listing.ID); err != nil {
			return err
		}
	}
	return nil
}

// ActiveLocations returns the distinct (state, city) pairs that currently
// have at least one active listing, so filter dropdowns never offer a
// location with zero results.
func (r *listingRepo) ActiveLocations(ctx context.Context) ([]models.LocationOption, error) {
	query := `
		SELECT DISTINCT state_code, city_name
		FROM listings
		WHERE active = TRUE AND state_code <> '' AND city_name <> ''
		ORDER BY state_code, city_name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.LocationOption
	for rows.Next() {
		var opt models.LocationOption
		if err := rows.Scan(&opt.StateCode, &opt.CityName); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

// PhotoKeys returns every photo object key referenced by a listing or a user
// profile. The orphaned-photo sweep diffs this against object storage.
func (r *listingRepo) PhotoKeys(ctx context.Context) ([]string, error) {
	query := `
		SELECT photo_path FROM listings WHERE photo_path IS NOT NULL
		UNION
		SELECT photo_path FROM users WHERE photo_path IS NOT NULL
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
