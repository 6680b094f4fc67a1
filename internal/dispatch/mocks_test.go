package dispatch_test

import (
	"context"

	"smartops.app/gateway/internal/model"
)

type mockProvider struct {
	id       string
	invokeFn func(ctx context.Context, messages []model.Message) (string, error)
}

func (m *mockProvider) ID() string { return m.id }

func (m *mockProvider) Invoke(ctx context.Context, messages []model.Message) (string, error) {
	if m.invokeFn != nil {
		return m.invokeFn(ctx, messages)
	}
	return "", nil
}

type mockTaskStore struct {
	createFn      func(ctx context.Context, task *model.Task) error
	finalizeFn    func(ctx context.Context, task *model.Task) error
	getByTaskIDFn func(ctx context.Context, taskID string, userID int64) (*model.Task, error)
	listByUserFn  func(ctx context.Context, userID int64, limit int32) ([]model.Task, error)
}

func (m *mockTaskStore) Create(ctx context.Context, task *model.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Finalize(ctx context.Context, task *model.Task) error {
	if m.finalizeFn != nil {
		return m.finalizeFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) GetByTaskID(ctx context.Context, taskID string, userID int64) (*model.Task, error) {
	if m.getByTaskIDFn != nil {
		return m.getByTaskIDFn(ctx, taskID, userID)
	}
	return nil, nil
}

func (m *mockTaskStore) ListByUser(ctx context.Context, userID int64, limit int32) ([]model.Task, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

type mockAlarmSink struct {
	fireFn func(ctx context.Context, task *model.Task)
}

func (m *mockAlarmSink) Fire(ctx context.Context, task *model.Task) {
	if m.fireFn != nil {
		m.fireFn(ctx, task)
	}
}
