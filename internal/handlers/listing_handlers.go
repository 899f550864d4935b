package handlers

import (
	"errors"
	"net/http"
	"time"

	"adoteja/internal/common"
	"adoteja/internal/models"
	"adoteja/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const photoURLExpiry = 15 * time.Minute

// ListingHandlers handles HTTP requests for listings
type ListingHandlers struct {
	listingService services.ListingService
	mediaService   services.MediaService
}

// NewListingHandlers creates a new listing handlers instance
func NewListingHandlers(listingService services.ListingService, mediaService services.MediaService) *ListingHandlers {
	return &ListingHandlers{
		listingService: listingService,
		mediaService:   mediaService,
	}
}

// Browse handles GET /listings. All filter params are optional; malformed
// vaccinated/neutered values are ignored rather than matching nothing.
func (h *ListingHandlers) Browse(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.ListingFilter{
		Species:    c.QueryParam("species"),
		Breed:      c.QueryParam("breed"),
		Sex:        c.QueryParam("sex"),
		Vaccinated: models.ParseTriState(c.QueryParam("vaccinated")),
		Neutered:   models.ParseTriState(c.QueryParam("neutered")),
		StateCode:  c.QueryParam("state"),
		CityName:   c.QueryParam("city"),
	}

	listings, locations, err := h.listingService.Browse(ctx, filter, time.Now().UTC())
	if err != nil {
		return listingHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"listings":  listings,
		"locations": locations,
	})
}

// GetListing handles GET /listings/:id
func (h *ListingHandlers) GetListing(c echo.Context) error {
	ctx := c.Request().Context()

	listingID, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.listingService.Get(ctx, listingID, time.Now().UTC())
	if err != nil {
		return listingHTTPError(err)
	}

	response := map[string]interface{}{"listing": view}
	if view.PhotoPath != nil {
		if url, urlErr := h.mediaService.ListingPhotoURL(*view.PhotoPath, photoURLExpiry); urlErr == nil {
			response["photo_url"] = url
		}
	}
	return c.JSON(http.StatusOK, response)
}

// MyListings handles GET /my/listings. The owner sees active and inactive
// listings side by side.
func (h *ListingHandlers) MyListings(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	active, inactive, err := h.listingService.Mine(ctx, userID, time.Now().UTC())
	if err != nil {
		return listingHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"active":   active,
		"inactive": inactive,
	})
}

// CreateListing handles POST /listings (multipart form)
func (h *ListingHandlers) CreateListing(c echo.Context) error {
	return h.saveListing(c, nil)
}

// UpdateListing handles PUT /listings/:id (multipart form)
func (h *ListingHandlers) UpdateListing(c echo.Context) error {
	listingID, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.saveListing(c, &listingID)
}

func (h *ListingHandlers) saveListing(c echo.Context, listingID *uuid.UUID) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	input, err := bindListingInput(c)
	if err != nil {
		return err
	}

	photo, err := bindPhoto(c)
	if err != nil {
		return err
	}

	listing, err := h.listingService.CreateOrUpdate(ctx, userID, listingID, input, photo)
	if err != nil {
		return listingHTTPError(err)
	}

	status := http.StatusCreated
	if listingID != nil {
		status = http.StatusOK
	}
	return c.JSON(status, map[string]interface{}{
		"message": "Listing saved successfully",
		"listing": listing,
	})
}

// DeleteListing handles DELETE /listings/:id
func (h *ListingHandlers) DeleteListing(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	listingID, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.listingService.Delete(ctx, listingID, userID); err != nil {
		return listingHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Listing deleted successfully",
	})
}

// ReactivateListing handles POST /listings/:id/reactivate
func (h *ListingHandlers) ReactivateListing(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	listingID, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	listing, err := h.listingService.Reactivate(ctx, listingID, userID, time.Now().UTC())
	if err != nil {
		return listingHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Listing reactivated successfully",
		"listing": listing,
	})
}

func bindListingInput(c echo.Context) (*services.ListingInput, error) {
	if err := common.ValidateRequiredString(c.FormValue("name"), "name"); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := common.ValidateRequiredString(c.FormValue("species"), "species"); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := &services.ListingInput{
		Name:       c.FormValue("name"),
		Species:    c.FormValue("species"),
		Breed:      common.OptionalString(c.FormValue("breed")),
		Color:      common.OptionalString(c.FormValue("color")),
		Sex:        common.OptionalString(c.FormValue("sex")),
		ApproxAge:  common.OptionalString(c.FormValue("approx_age")),
		Vaccinated: models.TriUnknown,
		Neutered:   models.TriUnknown,
	}
	if v := models.ParseTriState(c.FormValue("vaccinated")); v != nil {
		input.Vaccinated = *v
	}
	if n := models.ParseTriState(c.FormValue("neutered")); n != nil {
		input.Neutered = *n
	}
	return input, nil
}

func bindPhoto(c echo.Context) (*services.PhotoUpload, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid photo upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Failed to read photo upload")
	}
	// The service consumes the reader before the request ends; echo closes
	// multipart temp files after the handler returns.
	return &services.PhotoUpload{Filename: fileHeader.Filename, Reader: file}, nil
}

func listingHTTPError(err error) error {
	switch {
	case errors.Is(err, services.ErrListingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
	case errors.Is(err, services.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this listing")
	case errors.Is(err, services.ErrUnsupportedFormat):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Unsupported image format")
	case errors.Is(err, services.ErrCorruptImage):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Image could not be decoded")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
