package model

import "time"

// TaskStatus tracks a task's journey from creation to its terminal state.
// Transitions are monotonic: running → completed | failed, exactly once.
type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal reports whether no further status transition may occur.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Message is one turn of a conversation sent to a provider.
// Order is chronological and semantically meaningful.
type Message struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Task is the unit of work and its audit trail. It is exclusively mutated by
// the dispatcher while in flight; once persisted with a terminal status it is
// read-shared by history and status queries.
type Task struct {
	ID           int64
	TaskID       string // external handle, e.g. task_20240101_120000_123456
	Status       TaskStatus
	Model        string // caller-selected primary provider
	ProviderUsed string // provider that produced the final result; empty on failure
	Prompt       string
	Messages     []Message
	Result       string
	Suggestions  []string
	Structured   map[string]string
	Timestamp    time.Time
	UserID       int64
}
