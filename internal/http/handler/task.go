package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/dto"
	"smartops.app/gateway/internal/http/middleware"
	"smartops.app/gateway/internal/service"
	"smartops.app/gateway/internal/store"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	tasks, err := h.taskService.History(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": dto.ToTaskResponses(tasks)})
}

func (h *TaskHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	taskID := c.Query("task_id")
	if taskID == "" {
		// A bare status probe doubles as a liveness check.
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	task, err := h.taskService.Status(ctx, taskID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load task", "error", err, "task_id", taskID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}
