package store

import (
	"context"
	"errors"

	"smartops.app/gateway/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// TaskStore defines the contract for task record data access
type TaskStore interface {
	// Create persists a new running task and fills in its row ID.
	Create(ctx context.Context, task *model.Task) error
	// Finalize writes the terminal status, result, provider and
	// classification in one statement.
	Finalize(ctx context.Context, task *model.Task) error
	GetByTaskID(ctx context.Context, taskID string, userID int64) (*model.Task, error)
	ListByUser(ctx context.Context, userID int64, limit int32) ([]model.Task, error)
}

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// AlarmRuleStore defines the contract for alarm rule data access
type AlarmRuleStore interface {
	GetByID(ctx context.Context, id int64) (*model.AlarmRule, error)
	Create(ctx context.Context, rule *model.AlarmRule) error
	Update(ctx context.Context, rule *model.AlarmRule) error
	Delete(ctx context.Context, id int64, userID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.AlarmRule, error)
	ListEnabledByUser(ctx context.Context, userID int64) ([]model.AlarmRule, error)
}

// ConfigStore defines the contract for per-user config entries
type ConfigStore interface {
	Get(ctx context.Context, key string, userID int64) (*model.ConfigEntry, error)
	Upsert(ctx context.Context, entry *model.ConfigEntry) error
}
