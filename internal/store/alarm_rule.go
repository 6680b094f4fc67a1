package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartops.app/gateway/internal/model"
)

type alarmRuleStore struct {
	pool *pgxpool.Pool
}

func newAlarmRuleStore(pool *pgxpool.Pool) AlarmRuleStore {
	return &alarmRuleStore{pool: pool}
}

func (s *alarmRuleStore) GetByID(ctx context.Context, id int64) (*model.AlarmRule, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, rule_type, condition, notify_type, target, enabled, created_at
		FROM alarm_rules
		WHERE id = $1`,
		id,
	)
	rule, err := scanAlarmRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rule, nil
}

func (s *alarmRuleStore) Create(ctx context.Context, rule *model.AlarmRule) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO alarm_rules (id, user_id, rule_type, condition, notify_type, target, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		rule.ID, rule.UserID, rule.RuleType, rule.Condition, rule.NotifyType, rule.Target, rule.Enabled,
	).Scan(&rule.CreatedAt)
}

func (s *alarmRuleStore) Update(ctx context.Context, rule *model.AlarmRule) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE alarm_rules
		SET rule_type = $3, condition = $4, notify_type = $5, target = $6, enabled = $7
		WHERE id = $1 AND user_id = $2`,
		rule.ID, rule.UserID, rule.RuleType, rule.Condition, rule.NotifyType, rule.Target, rule.Enabled,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *alarmRuleStore) Delete(ctx context.Context, id int64, userID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM alarm_rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *alarmRuleStore) ListByUser(ctx context.Context, userID int64) ([]model.AlarmRule, error) {
	return s.list(ctx, `
		SELECT id, user_id, rule_type, condition, notify_type, target, enabled, created_at
		FROM alarm_rules
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
}

func (s *alarmRuleStore) ListEnabledByUser(ctx context.Context, userID int64) ([]model.AlarmRule, error) {
	return s.list(ctx, `
		SELECT id, user_id, rule_type, condition, notify_type, target, enabled, created_at
		FROM alarm_rules
		WHERE user_id = $1 AND enabled
		ORDER BY created_at DESC`,
		userID,
	)
}

func (s *alarmRuleStore) list(ctx context.Context, query string, args ...any) ([]model.AlarmRule, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing alarm rules: %w", err)
	}
	defer rows.Close()

	var rules []model.AlarmRule
	for rows.Next() {
		rule, err := scanAlarmRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func scanAlarmRule(row pgx.Row) (*model.AlarmRule, error) {
	var rule model.AlarmRule
	err := row.Scan(&rule.ID, &rule.UserID, &rule.RuleType, &rule.Condition,
		&rule.NotifyType, &rule.Target, &rule.Enabled, &rule.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
