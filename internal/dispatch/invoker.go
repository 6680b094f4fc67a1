package dispatch

import (
	"context"
	"log/slog"
	"time"

	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/model"
)

// Invoker applies a hard wall-clock deadline to one adapter invocation and
// collapses every failure mode into a single no-answer signal. Whether a call
// timed out or errored is logged here, never propagated.
type Invoker struct {
	registry *llm.Registry
}

func NewInvoker(registry *llm.Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Call invokes providerID with the given budget. It returns the reply text
// and true on success, or "" and false when the provider errored or the
// deadline expired. On expiry the upstream call may run to completion in the
// background; its result is discarded.
func (i *Invoker) Call(ctx context.Context, providerID string, messages []model.Message, timeout time.Duration) (string, bool) {
	provider, ok := i.registry.Get(providerID)
	if !ok {
		slog.ErrorContext(ctx, "no adapter registered for provider", "provider", providerID)
		return "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		text, err := provider.Invoke(callCtx, messages)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			slog.WarnContext(ctx, "provider call failed",
				"provider", providerID,
				"error", res.err)
			return "", false
		}
		return res.text, true
	case <-callCtx.Done():
		slog.WarnContext(ctx, "provider call timed out",
			"provider", providerID,
			"timeout", timeout)
		return "", false
	}
}
