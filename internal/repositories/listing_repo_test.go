package repositories

import (
	"context"
	"testing"
	"time"

	"adoteja/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var listingRows = []string{
	"id", "owner_id", "name", "species", "breed", "color", "sex", "approx_age",
	"vaccinated", "neutered", "photo_path", "state_code", "city_name",
	"created_at", "active", "expires_at",
}

type ListingRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      ListingRepository
	ownerID   uuid.UUID
	listingID uuid.UUID
	context   context.Context
}

func (suite *ListingRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewListingRepo(mock)
	suite.ownerID = uuid.New()
	suite.listingID = uuid.New()
	suite.context = context.Background()
}

func (suite *ListingRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestListingRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ListingRepoTestSuite))
}

func (suite *ListingRepoTestSuite) listingRow(createdAt time.Time, active bool) *pgxmock.Rows {
	expires := createdAt.Add(30 * 24 * time.Hour)
	return pgxmock.NewRows(listingRows).AddRow(
		suite.listingID, suite.ownerID, "Mia", "cat", nil, nil, nil, nil,
		models.TriYes, models.TriUnknown, nil, "SP", "Campinas",
		createdAt, active, &expires)
}

func (suite *ListingRepoTestSuite) TestCreate_Success() {
	createdAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expires := createdAt.Add(30 * 24 * time.Hour)
	listing := &models.Listing{
		ID:         suite.listingID,
		OwnerID:    suite.ownerID,
		Name:       "Mia",
		Species:    "cat",
		Vaccinated: models.TriYes,
		Neutered:   models.TriUnknown,
		StateCode:  "SP",
		CityName:   "Campinas",
		CreatedAt:  createdAt,
		Active:     true,
		ExpiresAt:  &expires,
	}

	suite.mock.ExpectExec(`INSERT INTO listings`).
		WithArgs(listing.ID, listing.OwnerID, listing.Name, listing.Species,
			listing.Breed, listing.Color, listing.Sex, listing.ApproxAge,
			listing.Vaccinated, listing.Neutered, listing.PhotoPath,
			listing.StateCode, listing.CityName, listing.CreatedAt,
			listing.Active, listing.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, listing)
	assert.NoError(suite.T(), err)
}

func (suite *ListingRepoTestSuite) TestGetByID_Success() {
	createdAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.mock.ExpectQuery(`SELECT .+ FROM listings WHERE id = \$1`).
		WithArgs(suite.listingID).
		WillReturnRows(suite.listingRow(createdAt, true))

	listing, err := suite.repo.GetByID(suite.context, suite.listingID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.listingID, listing.ID)
	assert.Equal(suite.T(), "Mia", listing.Name)
	assert.Equal(suite.T(), models.TriYes, listing.Vaccinated)
}

func (suite *ListingRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT .+ FROM listings WHERE id = \$1`).
		WithArgs(suite.listingID).
		WillReturnError(pgx.ErrNoRows)

	listing, err := suite.repo.GetByID(suite.context, suite.listingID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), listing)
}

func (suite *ListingRepoTestSuite) TestSearch_NoFiltersOrdersNewestFirst() {
	createdAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.mock.ExpectQuery(`SELECT .+ FROM listings WHERE 1=1 ORDER BY created_at DESC`).
		WillReturnRows(suite.listingRow(createdAt, true))

	listings, err := suite.repo.Search(suite.context, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), listings, 1)
}

func (suite *ListingRepoTestSuite) TestSearch_ConjunctivePredicatesInOrder() {
	createdAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	yes := models.TriYes
	filter := &models.ListingFilter{
		ActiveOnly: true,
		Species:    "cat",
		Vaccinated: &yes,
		StateCode:  "SP",
		CityName:   "Campinas",
	}

	suite.mock.ExpectQuery(`WHERE 1=1 AND active = TRUE AND species = \$1 AND vaccinated = \$2 AND state_code = \$3 AND city_name = \$4 ORDER BY created_at DESC`).
		WithArgs("cat", models.TriYes, "SP", "Campinas").
		WillReturnRows(suite.listingRow(createdAt, true))

	listings, err := suite.repo.Search(suite.context, filter)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), listings, 1)
}

func (suite *ListingRepoTestSuite) TestSearch_OwnerScopeSkipsActivePredicate() {
	createdAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	filter := &models.ListingFilter{OwnerID: &suite.ownerID}

	suite.mock.ExpectQuery(`WHERE 1=1 AND owner_id = \$1 ORDER BY created_at DESC`).
		WithArgs(suite.ownerID).
		WillReturnRows(suite.listingRow(createdAt, false))

	listings, err := suite.repo.Search(suite.context, filter)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), listings, 1)
	assert.False(suite.T(), listings[0].Active)
}

func (suite *ListingRepoTestSuite) TestSaveLifecycle_WritesEachListing() {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expires1 := now.Add(30 * 24 * time.Hour)
	expires2 := now.Add(-24 * time.Hour)
	first := &models.Listing{ID: uuid.New(), Active: true, ExpiresAt: &expires1}
	second := &models.Listing{ID: uuid.New(), Active: false, ExpiresAt: &expires2}

	suite.mock.ExpectExec(`UPDATE listings SET active = \$1, expires_at = \$2 WHERE id = \$3`).
		WithArgs(first.Active, first.ExpiresAt, first.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE listings SET active = \$1, expires_at = \$2 WHERE id = \$3`).
		WithArgs(second.Active, second.ExpiresAt, second.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.SaveLifecycle(suite.context, []*models.Listing{first, second})
	assert.NoError(suite.T(), err)
}

func (suite *ListingRepoTestSuite) TestActiveLocations_Success() {
	suite.mock.ExpectQuery(`SELECT DISTINCT state_code, city_name`).
		WillReturnRows(pgxmock.NewRows([]string{"state_code", "city_name"}).
			AddRow("MG", "Belo Horizonte").
			AddRow("SP", "Campinas"))

	options, err := suite.repo.ActiveLocations(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.LocationOption{
		{StateCode: "MG", CityName: "Belo Horizonte"},
		{StateCode: "SP", CityName: "Campinas"},
	}, options)
}

func (suite *ListingRepoTestSuite) TestPhotoKeys_UnionsListingsAndUsers() {
	suite.mock.ExpectQuery(`SELECT photo_path FROM listings WHERE photo_path IS NOT NULL`).
		WillReturnRows(pgxmock.NewRows([]string{"photo_path"}).
			AddRow("a/one.jpg").
			AddRow("b/two.png"))

	keys, err := suite.repo.PhotoKeys(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"a/one.jpg", "b/two.png"}, keys)
}

func (suite *ListingRepoTestSuite) TestDelete_Success() {
	suite.mock.ExpectExec(`DELETE FROM listings WHERE id = \$1`).
		WithArgs(suite.listingID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.listingID)
	assert.NoError(suite.T(), err)
}
