package service

import (
	"context"
	"fmt"
	"log/slog"

	"smartops.app/gateway/internal/cache"
	"smartops.app/gateway/internal/model"
	"smartops.app/gateway/internal/store"
)

const historyLimit = 20

type TaskService interface {
	History(ctx context.Context, userID int64) ([]model.Task, error)
	Status(ctx context.Context, taskID string, userID int64) (*model.Task, error)
}

type taskService struct {
	tasks   store.TaskStore
	history *cache.HistoryCache
}

func NewTaskService(tasks store.TaskStore, history *cache.HistoryCache) TaskService {
	return &taskService{
		tasks:   tasks,
		history: history,
	}
}

// History returns the user's most recent tasks, newest first. Results are
// served from the cache when fresh.
func (s *taskService) History(ctx context.Context, userID int64) ([]model.Task, error) {
	if tasks, ok := s.history.Get(ctx, userID); ok {
		return tasks, nil
	}

	tasks, err := s.tasks.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list task history",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	s.history.Set(ctx, userID, tasks)
	return tasks, nil
}

// Status returns a single task by its external id, scoped to the owner.
func (s *taskService) Status(ctx context.Context, taskID string, userID int64) (*model.Task, error) {
	task, err := s.tasks.GetByTaskID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	return task, nil
}
