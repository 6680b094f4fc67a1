package alarm_test

import (
	"context"

	"smartops.app/gateway/internal/model"
)

type mockAlarmRuleStore struct {
	getByIDFn           func(ctx context.Context, id int64) (*model.AlarmRule, error)
	createFn            func(ctx context.Context, rule *model.AlarmRule) error
	updateFn            func(ctx context.Context, rule *model.AlarmRule) error
	deleteFn            func(ctx context.Context, id int64, userID int64) error
	listByUserFn        func(ctx context.Context, userID int64) ([]model.AlarmRule, error)
	listEnabledByUserFn func(ctx context.Context, userID int64) ([]model.AlarmRule, error)
}

func (m *mockAlarmRuleStore) GetByID(ctx context.Context, id int64) (*model.AlarmRule, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAlarmRuleStore) Create(ctx context.Context, rule *model.AlarmRule) error {
	if m.createFn != nil {
		return m.createFn(ctx, rule)
	}
	return nil
}

func (m *mockAlarmRuleStore) Update(ctx context.Context, rule *model.AlarmRule) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, rule)
	}
	return nil
}

func (m *mockAlarmRuleStore) Delete(ctx context.Context, id int64, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil
}

func (m *mockAlarmRuleStore) ListByUser(ctx context.Context, userID int64) ([]model.AlarmRule, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAlarmRuleStore) ListEnabledByUser(ctx context.Context, userID int64) ([]model.AlarmRule, error) {
	if m.listEnabledByUserFn != nil {
		return m.listEnabledByUserFn(ctx, userID)
	}
	return nil, nil
}

type mockNotifier struct {
	notifyFn func(ctx context.Context, rule model.AlarmRule, task *model.Task) error
}

func (m *mockNotifier) Notify(ctx context.Context, rule model.AlarmRule, task *model.Task) error {
	if m.notifyFn != nil {
		return m.notifyFn(ctx, rule, task)
	}
	return nil
}
