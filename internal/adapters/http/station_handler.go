package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/ports"
)

// StationHandler serves the read-only Betriebsstellen reference table
type StationHandler struct {
	directory ports.StationDirectory
}

// NewStationHandler creates a new station handler
func NewStationHandler(directory ports.StationDirectory) *StationHandler {
	return &StationHandler{directory: directory}
}

// ListStations returns the reference table, optionally filtered by exact
// short name (?kurz=).
func (h *StationHandler) ListStations(c echo.Context) error {
	if kurz := c.QueryParam("kurz"); kurz != "" {
		rec, ok := h.directory.FindByShortName(kurz)
		if !ok {
			return c.JSON(http.StatusOK, []entities.StationRecord{})
		}
		return c.JSON(http.StatusOK, []entities.StationRecord{rec})
	}
	return c.JSON(http.StatusOK, h.directory.All())
}

// GetStation returns a single record by RL100 code
func (h *StationHandler) GetStation(c echo.Context) error {
	rec, ok := h.directory.FindByCode(c.Param("code"))
	if !ok {
		return notFound(entities.ErrStationNotFound)
	}
	return c.JSON(http.StatusOK, rec)
}
