package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"smartops.app/gateway/internal/model"
)

const defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

// DeepSeek speaks the OpenAI-compatible chat completions API.
type DeepSeek struct {
	client openai.Client
	model  string
}

func NewDeepSeek(cfg Config) *DeepSeek {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	opts = append(opts, option.WithBaseURL(baseURL))

	m := cfg.Model
	if m == "" {
		m = "deepseek-chat"
	}

	return &DeepSeek{
		client: openai.NewClient(opts...),
		model:  m,
	}
}

func (p *DeepSeek) ID() string { return ProviderDeepSeek }

func (p *DeepSeek) Invoke(ctx context.Context, messages []model.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: convertMessages(messages),
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", p.wrapError(err)
	}

	slog.DebugContext(ctx, "deepseek chat completed",
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider: ProviderDeepSeek,
			Kind:     KindMalformed,
			Err:      errors.New("no choices in response"),
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// InvokeStream emits reply fragments as the upstream produces them. Chunks
// that do not carry the expected delta field are skipped so a transient parse
// glitch does not abort the stream.
func (p *DeepSeek) InvokeStream(ctx context.Context, messages []model.Message, emit func(fragment string) error) error {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: convertMessages(messages),
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			slog.DebugContext(ctx, "skipping malformed stream chunk", "provider", ProviderDeepSeek)
			continue
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		if err := emit(fragment); err != nil {
			return fmt.Errorf("emit fragment: %w", err)
		}
	}

	if err := stream.Err(); err != nil {
		return p.wrapError(err)
	}
	return nil
}

func (p *DeepSeek) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider: ProviderDeepSeek,
			Kind:     KindUpstreamStatus,
			Status:   apiErr.StatusCode,
			Err:      err,
		}
	}
	return &ProviderError{
		Provider: ProviderDeepSeek,
		Kind:     KindTransport,
		Err:      err,
	}
}

func convertMessages(msgs []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}
