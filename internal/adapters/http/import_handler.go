package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahnwerk/core/internal/application/services"
	"github.com/bahnwerk/core/internal/infrastructure/logger"
)

// ImportHandler handles export-file import requests
type ImportHandler struct {
	importService *services.ImportService
	logger        *logger.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *services.ImportService, logger *logger.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// Preview parses an uploaded export file and returns the project candidates
// for selection. Defective rows come back with empty-field sentinels; only a
// file that cannot be parsed at all is rejected.
func (h *ImportHandler) Preview(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file could not be read")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file could not be read")
	}
	defer file.Close()

	candidates, err := h.importService.Preview(file)
	if err != nil {
		h.logger.Warnw("Import preview failed", "error", err, "filename", fileHeader.Filename)
		return echo.NewHTTPError(http.StatusBadRequest, "file could not be read")
	}

	return c.JSON(http.StatusOK, candidates)
}

// Commit adds the selected candidates to the task and returns the merged
// task.
func (h *ImportHandler) Commit(c echo.Context) error {
	var req ImportCommitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no rows selected to import")
	}

	task, err := h.importService.Commit(c.Param("id"), req.Projects)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}
