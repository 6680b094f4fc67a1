package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartops.app/gateway/common/id"
	"smartops.app/gateway/internal/model"
	"smartops.app/gateway/internal/store"
)

var ErrUnknownNotifyType = errors.New("unknown notify type")

// AlarmRuleService manages per-user alarm rules. All reads and writes are
// scoped to the owning user; a rule id belonging to another user behaves as
// not found.
type AlarmRuleService interface {
	Create(ctx context.Context, rule *model.AlarmRule) (*model.AlarmRule, error)
	Update(ctx context.Context, rule *model.AlarmRule) error
	Delete(ctx context.Context, ruleID, userID int64) error
	List(ctx context.Context, userID int64) ([]model.AlarmRule, error)
}

type alarmRuleService struct {
	rules store.AlarmRuleStore
}

func NewAlarmRuleService(rules store.AlarmRuleStore) AlarmRuleService {
	return &alarmRuleService{rules: rules}
}

func validNotifyType(t model.NotifyType) bool {
	switch t {
	case model.NotifyEmail, model.NotifyWebhook, model.NotifyChatBot:
		return true
	}
	return false
}

func (s *alarmRuleService) Create(ctx context.Context, rule *model.AlarmRule) (*model.AlarmRule, error) {
	if !validNotifyType(rule.NotifyType) {
		return nil, ErrUnknownNotifyType
	}
	if rule.Condition == "" {
		rule.Condition = model.ConditionAll
	}

	rule.ID = id.New()
	if err := s.rules.Create(ctx, rule); err != nil {
		slog.ErrorContext(ctx, "failed to create alarm rule",
			"error", err,
			"user_id", rule.UserID,
		)
		return nil, fmt.Errorf("creating alarm rule: %w", err)
	}

	slog.InfoContext(ctx, "alarm rule created",
		"rule_id", rule.ID,
		"notify_type", rule.NotifyType,
	)
	return rule, nil
}

func (s *alarmRuleService) Update(ctx context.Context, rule *model.AlarmRule) error {
	if !validNotifyType(rule.NotifyType) {
		return ErrUnknownNotifyType
	}

	existing, err := s.rules.GetByID(ctx, rule.ID)
	if err != nil {
		return err
	}
	if existing.UserID != rule.UserID {
		return store.ErrNotFound
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return fmt.Errorf("updating alarm rule: %w", err)
	}
	return nil
}

func (s *alarmRuleService) Delete(ctx context.Context, ruleID, userID int64) error {
	return s.rules.Delete(ctx, ruleID, userID)
}

func (s *alarmRuleService) List(ctx context.Context, userID int64) ([]model.AlarmRule, error) {
	rules, err := s.rules.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing alarm rules: %w", err)
	}
	return rules, nil
}
