// Package handler exposes HTTP handlers for the task list API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/service"
	"github.com/iliyamo/taskboard/internal/validation"
)

// TaskHandler bundles the dependencies of the /tasks endpoints.
type TaskHandler struct {
	Tasks  *repository.TaskRepo // Tasks is the in-memory task store
	Events *service.Dispatcher  // Events publishes a notification per append
	Log    *zap.Logger
	now    func() time.Time
}

// NewTaskHandler constructs a TaskHandler and panics if the store is nil.
// A nil dispatcher disables events and a nil logger discards logs.
func NewTaskHandler(tasks *repository.TaskRepo, events *service.Dispatcher, log *zap.Logger) *TaskHandler {
	if tasks == nil {
		panic("nil task repository passed to NewTaskHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = service.NewDispatcher(service.NopPublisher{}, 0, log)
	}
	return &TaskHandler{Tasks: tasks, Events: events, Log: log, now: time.Now}
}

type messageResp struct {
	Message string `json:"message"`
}

type listResp struct {
	Tasks []string `json:"tasks"`
}

// Create: validate the body, append the text and acknowledge.  The response
// never reveals where the task landed.
func (h *TaskHandler) Create(c echo.Context) error {
	var req validation.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code != http.StatusBadRequest {
			return err // e.g. 415 for a non-JSON content type
		}
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "invalid_body",
			"message": "request body must be a JSON object",
		})
	}
	if err := c.Validate(&req); err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":   "validation_failed",
				"message": verr.Message,
				"field":   verr.Field,
				"reason":  verr.Reason,
			})
		}
		return err
	}

	task := req.Task()
	pos, err := h.Tasks.Append(c.Request().Context(), task.Text)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyTask) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":   "validation_failed",
				"message": "Task text must not be empty",
				"field":   "text",
				"reason":  validation.ReasonEmpty,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "append task failed"})
	}
	h.Log.Debug("task added", zap.Int("position", pos))

	h.Events.Dispatch(service.NewTaskAddedEvent(task.Text, pos, h.now()))

	return c.JSON(http.StatusOK, messageResp{Message: "Task added successfully"})
}

// List: return every task in insertion order.
func (h *TaskHandler) List(c echo.Context) error {
	tasks, err := h.Tasks.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tasks failed"})
	}
	return c.JSON(http.StatusOK, listResp{Tasks: tasks})
}
