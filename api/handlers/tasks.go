package handlers

import (
	"context"
	"net/http"

	"chorebot-api/api/middleware"
	"chorebot-api/internal/chore"
	"chorebot-api/internal/events"
	"chorebot-api/internal/user"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TaskHandler serves /tasks
type TaskHandler struct {
	tasks  chore.Service
	users  user.Repository
	logger *logger.Logger
}

func NewTaskHandler(tasks chore.Service, users user.Repository, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		users:  users,
		logger: logger,
	}
}

type createTaskRequest struct {
	Name         string `json:"name"`
	IntervalDays int    `json:"interval_days"`
}

type updateTaskRequest struct {
	Name         *string `json:"name"`
	IntervalDays *int    `json:"interval_days"`
}

// view annotates a single task the same way ListViews does
func (h *TaskHandler) view(ctx context.Context, task *chore.Task) chore.TaskView {
	var names map[int64]string
	if task.LastDoneBy != nil {
		names = h.users.DisplayNames(ctx, []int64{*task.LastDoneBy})
	}
	return chore.NewTaskView(*task, h.tasks.Now(), names)
}

func (h *TaskHandler) List(c *gin.Context) {
	views, err := h.tasks.ListViews(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	task, err := h.tasks.AddTask(c.Request.Context(), req.Name, req.IntervalDays, events.SourceAPI)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	middleware.LoggerFrom(c, h.logger).Infow("Task created", "task_id", task.ID, "name", task.Name)
	c.JSON(http.StatusCreated, h.view(c.Request.Context(), task))
}

// Update renames and/or changes the interval. Both fields are validated
// before anything is written.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Name == nil && req.IntervalDays == nil {
		badRequest(c, "name or interval_days is required")
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), id, chore.TaskUpdate{
		Name:         req.Name,
		IntervalDays: req.IntervalDays,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.DeleteTask(c.Request.Context(), id, events.SourceAPI)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	middleware.LoggerFrom(c, h.logger).Infow("Task deleted", "task_id", task.ID, "name", task.Name)
	c.Status(http.StatusNoContent)
}

// Done records the calling chat as the completer
func (h *TaskHandler) Done(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	chatID, _ := middleware.ChatIDFrom(c)

	task, err := h.tasks.MarkDone(c.Request.Context(), id, user.Profile{ChatID: chatID}, events.SourceAPI)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	middleware.LoggerFrom(c, h.logger).Infow("Task completed", "task_id", task.ID, "name", task.Name)
	c.JSON(http.StatusOK, h.view(c.Request.Context(), task))
}
