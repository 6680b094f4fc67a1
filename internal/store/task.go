package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartops.app/gateway/internal/model"
)

type taskStore struct {
	pool *pgxpool.Pool
}

func newTaskStore(pool *pgxpool.Pool) TaskStore {
	return &taskStore{pool: pool}
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	messages, err := json.Marshal(task.Messages)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO tasks (task_id, status, model, prompt, messages, timestamp, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		task.TaskID, task.Status, task.Model, task.Prompt, messages, task.Timestamp, task.UserID,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (s *taskStore) Finalize(ctx context.Context, task *model.Task) error {
	suggestions, err := json.Marshal(task.Suggestions)
	if err != nil {
		return fmt.Errorf("encoding suggestions: %w", err)
	}
	structured, err := json.Marshal(task.Structured)
	if err != nil {
		return fmt.Errorf("encoding structured fields: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks
		SET status = $2, provider_used = $3, result = $4, suggestions = $5, structured = $6
		WHERE task_id = $1 AND status = 'running'`,
		task.TaskID, task.Status, task.ProviderUsed, task.Result, suggestions, structured,
	)
	if err != nil {
		return fmt.Errorf("finalizing task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *taskStore) GetByTaskID(ctx context.Context, taskID string, userID int64) (*model.Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, task_id, status, model, provider_used, prompt, messages, result, suggestions, structured, timestamp, user_id
		FROM tasks
		WHERE task_id = $1 AND user_id = $2`,
		taskID, userID,
	)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskStore) ListByUser(ctx context.Context, userID int64, limit int32) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, status, model, provider_used, prompt, messages, result, suggestions, structured, timestamp, user_id
		FROM tasks
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		task         model.Task
		providerUsed *string
		result       *string
		messages     []byte
		suggestions  []byte
		structured   []byte
	)

	err := row.Scan(&task.ID, &task.TaskID, &task.Status, &task.Model, &providerUsed,
		&task.Prompt, &messages, &result, &suggestions, &structured, &task.Timestamp, &task.UserID)
	if err != nil {
		return nil, err
	}

	if providerUsed != nil {
		task.ProviderUsed = *providerUsed
	}
	if result != nil {
		task.Result = *result
	}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &task.Messages); err != nil {
			return nil, fmt.Errorf("decoding messages: %w", err)
		}
	}
	if len(suggestions) > 0 {
		if err := json.Unmarshal(suggestions, &task.Suggestions); err != nil {
			return nil, fmt.Errorf("decoding suggestions: %w", err)
		}
	}
	if len(structured) > 0 {
		if err := json.Unmarshal(structured, &task.Structured); err != nil {
			return nil, fmt.Errorf("decoding structured fields: %w", err)
		}
	}
	return &task, nil
}
