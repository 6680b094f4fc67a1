package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/cache"
	"smartops.app/gateway/internal/dispatch"
	"smartops.app/gateway/internal/http/dto"
	"smartops.app/gateway/internal/http/middleware"
	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/model"
)

const (
	analyzePromptPrefix = "请帮我分析以下日志或配置文件内容，给出关键信息、异常、优化建议等：\n\n"
	analyzeContentLimit = 4000
)

// ChatDispatcher is the dispatch policy entry point as seen by the HTTP
// layer.
type ChatDispatcher interface {
	Dispatch(ctx context.Context, userID int64, primary, prompt string, messages []model.Message) (*model.Task, error)
}

type ChatHandler struct {
	dispatcher ChatDispatcher
	registry   *llm.Registry
	history    *cache.HistoryCache
}

func NewChatHandler(dispatcher ChatDispatcher, registry *llm.Registry, history *cache.HistoryCache) *ChatHandler {
	return &ChatHandler{
		dispatcher: dispatcher,
		registry:   registry,
		history:    history,
	}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	primary := req.Model
	if primary == "" {
		primary = llm.ProviderDeepSeek
	}
	if !llm.Known(primary) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown model: " + primary})
		return
	}

	messages := req.BuildMessages()
	if len(messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt or messages required"})
		return
	}

	// The recorded prompt is the effective request text: the explicit prompt,
	// or the final message of a messages-only submission.
	prompt := req.Prompt
	if prompt == "" {
		prompt = messages[len(messages)-1].Content
	}

	user := middleware.GetUser(ctx)

	task, err := h.dispatcher.Dispatch(ctx, user.ID, primary, prompt, messages)
	if err != nil {
		if errors.Is(err, dispatch.ErrExhausted) {
			h.history.Invalidate(ctx, user.ID)
			c.JSON(http.StatusInternalServerError, dto.ToChatResponse(task))
			return
		}
		slog.ErrorContext(ctx, "dispatch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
		return
	}

	h.history.Invalidate(ctx, user.ID)
	c.JSON(http.StatusOK, dto.ToChatResponse(task))
}

// ChatStream streams a reply from the streaming-capable provider as raw text
// fragments. Streamed replies leave no task record.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	primary := req.Model
	if primary == "" {
		primary = llm.ProviderDeepSeek
	}
	if primary != llm.ProviderDeepSeek {
		c.JSON(http.StatusBadRequest, gin.H{"error": "streaming is only supported for deepseek"})
		return
	}

	messages := req.BuildMessages()
	if len(messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt or messages required"})
		return
	}

	provider, ok := h.registry.Get(primary)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
		return
	}
	streamer, ok := provider.(llm.StreamingProvider)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider does not support streaming"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	err := streamer.InvokeStream(ctx, messages, func(fragment string) error {
		if _, err := io.WriteString(c.Writer, fragment); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are already sent; all we can do is log and close.
		slog.WarnContext(ctx, "stream aborted", "error", err)
	}
}

// Analyze accepts an uploaded log or config file and runs it through the
// dispatch policy with a synthesized analysis prompt.
func (h *ChatHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	primary := c.PostForm("model")
	if primary == "" {
		primary = llm.ProviderDeepSeek
	}
	if !llm.Known(primary) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown model: " + primary})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	// The budget is 4000 characters, not bytes. Read up to the worst-case
	// byte width and cut on a rune boundary so multibyte text stays intact.
	content, err := io.ReadAll(io.LimitReader(file, utf8.UTFMax*analyzeContentLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	text := string(content)
	if runes := []rune(text); len(runes) > analyzeContentLimit {
		text = string(runes[:analyzeContentLimit])
	}

	prompt := analyzePromptPrefix + text
	messages := []model.Message{{Role: model.RoleUser, Content: prompt}}

	user := middleware.GetUser(ctx)

	task, err := h.dispatcher.Dispatch(ctx, user.ID, primary, prompt, messages)
	if err != nil {
		if errors.Is(err, dispatch.ErrExhausted) {
			h.history.Invalidate(ctx, user.ID)
			c.JSON(http.StatusInternalServerError, dto.ToChatResponse(task))
			return
		}
		slog.ErrorContext(ctx, "dispatch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
		return
	}

	h.history.Invalidate(ctx, user.ID)
	c.JSON(http.StatusOK, dto.ToChatResponse(task))
}
