// Package llm holds the provider adapters. An adapter translates a generic
// message list into one provider-specific call and returns plain text or a
// ProviderError; retry and fallback live in the dispatch layer, never here.
package llm

import (
	"context"
	"fmt"

	"smartops.app/gateway/internal/model"
)

// Provider IDs. Exactly two providers are supported and each is the other's
// designated fallback.
const (
	ProviderDeepSeek = "deepseek"
	ProviderTongyi   = "tongyi"
)

// Known reports whether id names a supported provider.
func Known(id string) bool {
	return id == ProviderDeepSeek || id == ProviderTongyi
}

// FallbackFor returns the sibling fallback of a provider. With exactly two
// providers the fallback is always "the other one".
func FallbackFor(id string) string {
	if id == ProviderDeepSeek {
		return ProviderTongyi
	}
	return ProviderDeepSeek
}

// ErrorKind classifies adapter failures.
type ErrorKind string

const (
	KindTransport      ErrorKind = "transport"
	KindMalformed      ErrorKind = "malformed-response"
	KindUpstreamStatus ErrorKind = "upstream-status"
)

// ProviderError is the only error type adapters return. It never escapes the
// timeout-bounded invoker.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int // upstream HTTP status, when Kind is KindUpstreamStatus
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider invokes one upstream model with an ordered conversation and
// returns the reply text.
type Provider interface {
	ID() string
	Invoke(ctx context.Context, messages []model.Message) (string, error)
}

// StreamingProvider additionally produces the reply as a lazy, finite,
// non-restartable fragment sequence. Fragments are delivered in order via
// emit; malformed upstream fragments are skipped, not propagated. Returning
// an error from emit aborts the stream.
type StreamingProvider interface {
	Provider
	InvokeStream(ctx context.Context, messages []model.Message, emit func(fragment string) error) error
}

// Config holds one provider's client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Registry resolves provider IDs to constructed adapters. Adapters are
// injected at wiring time so tests can substitute deterministic doubles.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.ID()] = p
	}
	return r
}

// Get returns the adapter registered under id.
func (r *Registry) Get(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}
