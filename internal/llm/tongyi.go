package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"smartops.app/gateway/internal/model"
)

const defaultTongyiBaseURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

// Tongyi speaks the DashScope text-generation API, which takes a single
// flattened prompt rather than a message list and replies with output.text.
type Tongyi struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewTongyi(cfg Config) *Tongyi {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultTongyiBaseURL
	}
	m := cfg.Model
	if m == "" {
		m = "qwen-turbo"
	}
	return &Tongyi{
		httpClient: &http.Client{},
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      m,
	}
}

func (p *Tongyi) ID() string { return ProviderTongyi }

func (p *Tongyi) Invoke(ctx context.Context, messages []model.Message) (string, error) {
	body, _ := sjson.Set("{}", "model", p.model)
	body, _ = sjson.Set(body, "input.prompt", flattenPrompt(messages))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(body))
	if err != nil {
		return "", &ProviderError{Provider: ProviderTongyi, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: ProviderTongyi, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: ProviderTongyi, Kind: KindTransport, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProviderError{
			Provider: ProviderTongyi,
			Kind:     KindUpstreamStatus,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	text := gjson.GetBytes(raw, "output.text")
	if !text.Exists() {
		return "", &ProviderError{
			Provider: ProviderTongyi,
			Kind:     KindMalformed,
			Err:      fmt.Errorf("response missing output.text"),
		}
	}

	slog.DebugContext(ctx, "tongyi generation completed",
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds())

	return text.String(), nil
}

// flattenPrompt renders the conversation as alternating 用户/助手 lines, the
// shape the DashScope prompt input expects.
func flattenPrompt(messages []model.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg.Role == model.RoleUser {
			b.WriteString("用户：")
		} else {
			b.WriteString("助手：")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}
