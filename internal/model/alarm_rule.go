package model

import "time"

// NotifyType selects the delivery channel for an alarm notification.
type NotifyType string

const (
	NotifyEmail   NotifyType = "email"
	NotifyWebhook NotifyType = "webhook"
	NotifyChatBot NotifyType = "chatbot"
)

// Alarm rule condition values. A rule fires when its condition equals the
// task's terminal status, or unconditionally for ConditionAll.
const (
	ConditionAll       = "all"
	ConditionFailed    = string(TaskStatusFailed)
	ConditionCompleted = string(TaskStatusCompleted)
)

// AlarmRule is a user-configured notification rule. The dispatch core only
// evaluates rules, it never mutates them.
type AlarmRule struct {
	ID         int64
	UserID     int64
	RuleType   string
	Condition  string // terminal status to match, or "all"
	NotifyType NotifyType
	Target     string // address, URL, or bot webhook depending on NotifyType
	Enabled    bool
	CreatedAt  time.Time
}
