package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahnwerk/core/internal/application/services"
	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/infrastructure/logger"
	"github.com/bahnwerk/core/internal/ports"
)

// TaskHandler handles task-tree requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the full task sequence
func (h *TaskHandler) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.taskService.ListTasks())
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task := h.taskService.CreateTask(req)
	return c.JSON(http.StatusCreated, task)
}

// GetTask returns a single task by id
func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Param("id"))
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task and everything nested in it
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	h.taskService.DeleteTask(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// AddProject appends a project to a task
func (h *TaskHandler) AddProject(c echo.Context) error {
	var req ports.ProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.AddProject(c.Param("id"), req)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// EditProject replaces a project's editable fields
func (h *TaskHandler) EditProject(c echo.Context) error {
	var req ports.ProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.EditProject(c.Param("id"), c.Param("projectID"), req)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteProject removes a project from a task
func (h *TaskHandler) DeleteProject(c echo.Context) error {
	task, err := h.taskService.DeleteProject(c.Param("id"), c.Param("projectID"))
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}

// SetProjectCompleted sets a project's completed flag
func (h *TaskHandler) SetProjectCompleted(c echo.Context) error {
	var req ports.SetCompletedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.MarkProjectCompleted(c.Param("id"), c.Param("projectID"), *req.Completed)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}

// AddComment appends a comment to a project
func (h *TaskHandler) AddComment(c echo.Context) error {
	var req ports.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.AddComment(c.Param("id"), c.Param("projectID"), req)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// DeleteComment removes a comment from a project
func (h *TaskHandler) DeleteComment(c echo.Context) error {
	task, err := h.taskService.DeleteComment(c.Param("id"), c.Param("projectID"), c.Param("commentID"))
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}

// AddNotification attaches a reminder to a project
func (h *TaskHandler) AddNotification(c echo.Context) error {
	var req ports.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.AddNotification(c.Param("id"), c.Param("projectID"), req)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// DeleteNotification removes a reminder from a project
func (h *TaskHandler) DeleteNotification(c echo.Context) error {
	task, err := h.taskService.DeleteNotification(c.Param("id"), c.Param("projectID"), c.Param("notificationID"))
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}

// SetNotificationCompleted sets a reminder's completed flag
func (h *TaskHandler) SetNotificationCompleted(c echo.Context) error {
	var req ports.SetCompletedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.MarkNotificationCompleted(c.Param("id"), c.Param("projectID"), c.Param("notificationID"), *req.Completed)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, task)
}

// notFound maps domain not-found sentinels to 404; anything else is a 500.
// The store itself never fails, so other errors are unexpected.
func notFound(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrProjectNotFound),
		errors.Is(err, entities.ErrCommentNotFound),
		errors.Is(err, entities.ErrNotificationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
