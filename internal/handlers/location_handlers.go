package handlers

import (
	"net/http"
	"strings"

	"adoteja/internal/catalog"

	"github.com/labstack/echo/v4"
)

// LocationHandlers serves the static state and city reference lists
type LocationHandlers struct {
	catalog *catalog.Catalog
}

func NewLocationHandlers(locationCatalog *catalog.Catalog) *LocationHandlers {
	return &LocationHandlers{catalog: locationCatalog}
}

// GetStates handles GET /locations/states
func (h *LocationHandlers) GetStates(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"states": h.catalog.States(),
	})
}

// GetCities handles GET /locations/states/:uf/cities
func (h *LocationHandlers) GetCities(c echo.Context) error {
	uf := strings.ToUpper(c.Param("uf"))
	if !h.catalog.HasState(uf) {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown state code")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"state_code": uf,
		"cities":     h.catalog.Cities(uf),
	})
}
