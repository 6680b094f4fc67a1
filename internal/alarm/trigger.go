// Package alarm evaluates a user's notification rules against a terminal
// task outcome and fans out best-effort notifications.
package alarm

import (
	"context"
	"log/slog"
	"sync"

	"smartops.app/gateway/internal/model"
	"smartops.app/gateway/internal/store"
)

// Notifier delivers one notification over a single channel type.
type Notifier interface {
	Notify(ctx context.Context, rule model.AlarmRule, task *model.Task) error
}

// Trigger loads the owner's enabled rules and dispatches each matching rule
// on its channel. Every delivery is independently best-effort: one channel's
// failure is logged and never aborts its siblings, alters the task record,
// or surfaces to the original caller.
type Trigger struct {
	rules     store.AlarmRuleStore
	notifiers map[model.NotifyType]Notifier
}

func NewTrigger(rules store.AlarmRuleStore, notifiers map[model.NotifyType]Notifier) *Trigger {
	return &Trigger{rules: rules, notifiers: notifiers}
}

// Fire evaluates all enabled rules for the task's owner. It returns after
// every matching delivery has been attempted.
func (t *Trigger) Fire(ctx context.Context, task *model.Task) {
	rules, err := t.rules.ListEnabledByUser(ctx, task.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "loading alarm rules failed", "user_id", task.UserID, "error", err)
		return
	}

	var wg sync.WaitGroup
	for _, rule := range rules {
		if rule.Condition != model.ConditionAll && rule.Condition != string(task.Status) {
			continue
		}

		notifier, ok := t.notifiers[rule.NotifyType]
		if !ok {
			slog.WarnContext(ctx, "no notifier for channel", "notify_type", rule.NotifyType, "rule_id", rule.ID)
			continue
		}

		wg.Add(1)
		go func(rule model.AlarmRule) {
			defer wg.Done()
			if err := notifier.Notify(ctx, rule, task); err != nil {
				slog.ErrorContext(ctx, "alarm delivery failed",
					"rule_id", rule.ID,
					"notify_type", rule.NotifyType,
					"task_id", task.TaskID,
					"error", err)
				return
			}
			slog.InfoContext(ctx, "alarm delivered",
				"rule_id", rule.ID,
				"notify_type", rule.NotifyType,
				"task_id", task.TaskID)
		}(rule)
	}
	wg.Wait()
}
