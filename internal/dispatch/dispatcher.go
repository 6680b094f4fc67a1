// Package dispatch implements the dual-provider dispatch policy: send a
// request to the caller-selected primary provider, fall back to its sibling
// on timeout or failure, classify and persist the outcome, and raise alarms
// on failure.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"smartops.app/gateway/common/logger"
	"smartops.app/gateway/internal/classify"
	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/model"
	"smartops.app/gateway/internal/store"
)

// ErrExhausted signals that both providers failed to produce a usable reply
// within their budgets. It is the only dispatch outcome surfaced to the
// caller as a request failure.
var ErrExhausted = errors.New("dispatch exhausted: both providers failed")

// ExhaustedMessage is the result text recorded on a failed task.
const ExhaustedMessage = "两个API接口均无响应，请稍后重试"

// Default per-call budgets. The fallback budget is intentionally shorter:
// the caller has already waited through the primary budget once.
const (
	DefaultPrimaryTimeout  = 20 * time.Second
	DefaultFallbackTimeout = 15 * time.Second
)

// AlarmSink receives finalized failed tasks. Delivery is fire-and-continue:
// its outcome never alters the already-decided task status.
type AlarmSink interface {
	Fire(ctx context.Context, task *model.Task)
}

type Config struct {
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
}

// Dispatcher owns the task record for the duration of one request. Its steps
// are strictly sequential; the two provider calls are never raced.
type Dispatcher struct {
	invoker *Invoker
	tasks   store.TaskStore
	alarms  AlarmSink
	cfg     Config
}

func NewDispatcher(invoker *Invoker, tasks store.TaskStore, alarms AlarmSink, cfg Config) *Dispatcher {
	if cfg.PrimaryTimeout <= 0 {
		cfg.PrimaryTimeout = DefaultPrimaryTimeout
	}
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = DefaultFallbackTimeout
	}
	return &Dispatcher{
		invoker: invoker,
		tasks:   tasks,
		alarms:  alarms,
		cfg:     cfg,
	}
}

// Dispatch runs one request through the policy and returns the finalized
// task. A persistence failure is fatal to the request: the gateway must not
// report success for an unrecorded outcome. ErrExhausted is returned when
// both providers failed; the task still carries the terminal failed record.
func (d *Dispatcher) Dispatch(ctx context.Context, userID int64, primary, prompt string, messages []model.Message) (*model.Task, error) {
	fallback := llm.FallbackFor(primary)

	now := time.Now()
	task := &model.Task{
		TaskID:    newTaskID(now),
		Status:    model.TaskStatusRunning,
		Model:     primary,
		Prompt:    prompt,
		Messages:  messages,
		Timestamp: now,
		UserID:    userID,
	}

	// Persist the running record before any provider call so a crash
	// mid-flight leaves a durable trace of the request.
	if err := d.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("persisting running task: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TaskID: logger.Ptr(task.TaskID),
		UserID: logger.Ptr(userID),
	})
	slog.InfoContext(ctx, "task created", "primary", primary, "fallback", fallback)

	reply, ok := d.invoker.Call(ctx, primary, messages, d.cfg.PrimaryTimeout)
	if ok {
		task.Status = model.TaskStatusCompleted
		task.ProviderUsed = primary
		task.Result = reply
	} else {
		reply, ok = d.invoker.Call(ctx, fallback, messages, d.cfg.FallbackTimeout)
		if ok {
			task.Status = model.TaskStatusCompleted
			task.ProviderUsed = fallback
			// The caller must be told a substitution occurred.
			task.Result = fmt.Sprintf("主通道超时，已切换到%s：\n%s", fallback, reply)
		} else {
			task.Status = model.TaskStatusFailed
			task.Result = ExhaustedMessage
		}
	}

	task.Suggestions = classify.ExtractSuggestions(task.Result)
	task.Structured = classify.ExtractStructured(task.Result)

	// Terminal status, result and classification land in a single update so
	// readers never observe a partially populated terminal record.
	if err := d.tasks.Finalize(ctx, task); err != nil {
		return nil, fmt.Errorf("persisting terminal task: %w", err)
	}

	if task.Status == model.TaskStatusFailed {
		slog.WarnContext(ctx, "dispatch exhausted", "primary", primary, "fallback", fallback)
		d.alarms.Fire(ctx, task)
		return task, ErrExhausted
	}

	slog.InfoContext(ctx, "task completed", "provider_used", task.ProviderUsed)
	return task, nil
}

// newTaskID derives the external task handle from the creation time. The
// microsecond suffix keeps concurrent handles distinct.
func newTaskID(now time.Time) string {
	return fmt.Sprintf("task_%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)
}
