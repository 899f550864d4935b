package handlers

import (
	"net/http"
	"strings"

	"adoteja/internal/catalog"
	"adoteja/internal/common"
	"adoteja/internal/repositories"
	"adoteja/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles profile HTTP requests for the authenticated user
type UserHandlers struct {
	userRepo     repositories.UserRepository
	mediaService services.MediaService
	catalog      *catalog.Catalog
}

func NewUserHandlers(userRepo repositories.UserRepository, mediaService services.MediaService, locationCatalog *catalog.Catalog) *UserHandlers {
	return &UserHandlers{
		userRepo:     userRepo,
		mediaService: mediaService,
		catalog:      locationCatalog,
	}
}

// Me handles GET /me
func (h *UserHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "user")
	}

	response := map[string]interface{}{"user": user}
	if user.PhotoPath != nil {
		if url, urlErr := h.mediaService.ProfilePhotoURL(*user.PhotoPath, photoURLExpiry); urlErr == nil {
			response["photo_url"] = url
		}
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateMeRequest represents the profile update payload. Omitted fields
// keep their current values.
type UpdateMeRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	StateCode *string `json:"state_code"`
	CityName  *string `json:"city_name"`
}

// UpdateMe handles PUT /me
func (h *UserHandlers) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req UpdateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "user")
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Name cannot be empty")
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Email cannot be empty")
		}
		if email != user.Email {
			taken, err := h.userRepo.EmailExists(ctx, email)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check email")
			}
			if taken {
				return echo.NewHTTPError(http.StatusConflict, "Email already registered")
			}
			user.Email = email
		}
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.StateCode != nil {
		user.StateCode = req.StateCode
		// A state change invalidates the previous city unless one was sent
		// along with it.
		if req.CityName == nil {
			user.CityName = nil
		}
	}
	if req.CityName != nil {
		user.CityName = req.CityName
	}

	if user.StateCode != nil && *user.StateCode != "" {
		if !h.catalog.HasState(*user.StateCode) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown state code")
		}
		if user.CityName != nil && *user.CityName != "" && !h.catalog.HasCity(*user.StateCode, *user.CityName) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown city for state")
		}
	} else if user.CityName != nil && *user.CityName != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "city requires a state")
	}

	if err := h.userRepo.Update(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

// UploadPhoto handles POST /me/photo with a multipart "photo" field
func (h *UserHandlers) UploadPhoto(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	photo, err := bindPhoto(c)
	if err != nil {
		return err
	}
	if photo == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo file is required")
	}

	objectKey, err := h.mediaService.StoreProfilePhoto(ctx, userID, photo.Filename, photo.Reader)
	if err != nil {
		return listingHTTPError(err)
	}
	if err := h.userRepo.UpdatePhoto(ctx, userID, objectKey); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save photo")
	}

	response := map[string]interface{}{"photo_path": objectKey}
	if url, urlErr := h.mediaService.ProfilePhotoURL(objectKey, photoURLExpiry); urlErr == nil {
		response["photo_url"] = url
	}
	return c.JSON(http.StatusOK, response)
}
