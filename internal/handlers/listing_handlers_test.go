package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adoteja/internal/common"
	"adoteja/internal/models"
	"adoteja/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Browse(ctx context.Context, filter *models.ListingFilter, now time.Time) ([]*services.ListingView, []models.LocationOption, error) {
	args := m.Called(ctx, filter, now)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*services.ListingView), args.Get(1).([]models.LocationOption), args.Error(2)
}

func (m *MockListingService) Get(ctx context.Context, listingID uuid.UUID, now time.Time) (*services.ListingView, error) {
	args := m.Called(ctx, listingID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ListingView), args.Error(1)
}

func (m *MockListingService) Mine(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*services.ListingView, []*services.ListingView, error) {
	args := m.Called(ctx, ownerID, now)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*services.ListingView), args.Get(1).([]*services.ListingView), args.Error(2)
}

func (m *MockListingService) CreateOrUpdate(ctx context.Context, ownerID uuid.UUID, listingID *uuid.UUID, input *services.ListingInput, photo *services.PhotoUpload) (*models.Listing, error) {
	args := m.Called(ctx, ownerID, listingID, input, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, listingID, actorID uuid.UUID) error {
	args := m.Called(ctx, listingID, actorID)
	return args.Error(0)
}

func (m *MockListingService) Reactivate(ctx context.Context, listingID, actorID uuid.UUID, now time.Time) (*models.Listing, error) {
	args := m.Called(ctx, listingID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func TestBrowse_ParsesFilterParams(t *testing.T) {
	e := echo.New()
	svc := &MockListingService{}
	h := NewListingHandlers(svc, nil)

	svc.On("Browse", mock.Anything, mock.MatchedBy(func(f *models.ListingFilter) bool {
		return f.Species == "dog" && f.StateCode == "SP" && f.CityName == "Campinas" &&
			f.Vaccinated != nil && *f.Vaccinated == models.TriYes && f.Neutered == nil
	}), mock.Anything).Return([]*services.ListingView{}, []models.LocationOption{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/listings?species=dog&state=SP&city=Campinas&vaccinated=sim", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Browse(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestBrowse_MalformedTriStateIgnored(t *testing.T) {
	e := echo.New()
	svc := &MockListingService{}
	h := NewListingHandlers(svc, nil)

	// "maybe" is not a tri-state value; the filter is dropped, not an error.
	svc.On("Browse", mock.Anything, mock.MatchedBy(func(f *models.ListingFilter) bool {
		return f.Vaccinated == nil && f.Neutered == nil
	}), mock.Anything).Return([]*services.ListingView{}, []models.LocationOption{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/listings?vaccinated=maybe&neutered=3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Browse(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetListing_InvalidUUID(t *testing.T) {
	e := echo.New()
	svc := &MockListingService{}
	h := NewListingHandlers(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetListing(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteListing_NotOwnerMapsToForbidden(t *testing.T) {
	e := echo.New()
	svc := &MockListingService{}
	h := NewListingHandlers(svc, nil)

	listingID := uuid.New()
	actorID := uuid.New()
	svc.On("Delete", mock.Anything, listingID, actorID).Return(services.ErrPermissionDenied)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(listingID.String())
	c.SetRequest(req.WithContext(common.WithUserID(req.Context(), actorID)))

	err := h.DeleteListing(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}
