package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"smartops.app/gateway/internal/dispatch"
	"smartops.app/gateway/internal/http/handler"
	"smartops.app/gateway/internal/http/middleware"
	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/model"
)

var _ = Describe("ChatHandler", func() {
	var (
		router     *gin.Engine
		dispatcher *mockDispatcher
		auth       *mockAuthService
	)

	authedRequest := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		dispatcher = &mockDispatcher{}
		auth = &mockAuthService{
			authenticateFn: func(_ context.Context, token string) (*model.User, error) {
				return &model.User{ID: 7, Username: "ops"}, nil
			},
		}

		router = gin.New()
		h := handler.NewChatHandler(dispatcher, llm.NewRegistry(), nil)
		group := router.Group("", middleware.RequireAuth(auth))
		group.POST("/chat", h.Chat)
		group.POST("/analyze", h.Analyze)
		router.POST("/chat/stream", h.ChatStream)
	})

	Describe("Chat", func() {
		It("dispatches the prompt for the authenticated user", func() {
			dispatcher.dispatchFn = func(_ context.Context, userID int64, primary, prompt string, messages []model.Message) (*model.Task, error) {
				Expect(userID).To(Equal(int64(7)))
				Expect(primary).To(Equal(llm.ProviderDeepSeek))
				Expect(messages).To(Equal([]model.Message{{Role: model.RoleUser, Content: "磁盘满了"}}))
				return &model.Task{
					TaskID:      "task_1",
					Status:      model.TaskStatusCompleted,
					Result:      "建议: 清理日志",
					Suggestions: []string{"建议: 清理日志"},
					Structured:  map[string]string{"建议": "建议: 清理日志"},
				}, nil
			}

			body, _ := json.Marshal(map[string]string{"prompt": "磁盘满了"})
			w := authedRequest(http.MethodPost, "/chat", body)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["reply"]).To(Equal("建议: 清理日志"))
			Expect(resp["task_id"]).To(Equal("task_1"))
			Expect(resp["status"]).To(Equal("completed"))
			Expect(resp["建议"]).To(Equal("建议: 清理日志"))
		})

		It("honors an explicit model selection", func() {
			var gotPrimary string
			dispatcher.dispatchFn = func(_ context.Context, _ int64, primary, _ string, _ []model.Message) (*model.Task, error) {
				gotPrimary = primary
				return &model.Task{Status: model.TaskStatusCompleted}, nil
			}

			body, _ := json.Marshal(map[string]string{"prompt": "hi", "model": "tongyi"})
			w := authedRequest(http.MethodPost, "/chat", body)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotPrimary).To(Equal(llm.ProviderTongyi))
		})

		It("derives the recorded prompt from the last message when no prompt is given", func() {
			var gotPrompt string
			dispatcher.dispatchFn = func(_ context.Context, _ int64, _, prompt string, _ []model.Message) (*model.Task, error) {
				gotPrompt = prompt
				return &model.Task{Status: model.TaskStatusCompleted}, nil
			}

			body, _ := json.Marshal(map[string]any{
				"messages": []map[string]string{
					{"role": "user", "content": "服务挂了"},
					{"role": "assistant", "content": "请贴日志"},
					{"role": "user", "content": "日志在这里"},
				},
			})
			w := authedRequest(http.MethodPost, "/chat", body)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotPrompt).To(Equal("日志在这里"))
		})

		It("rejects an unknown model", func() {
			body, _ := json.Marshal(map[string]string{"prompt": "hi", "model": "gpt-4"})
			w := authedRequest(http.MethodPost, "/chat", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects an empty request", func() {
			body, _ := json.Marshal(map[string]string{})
			w := authedRequest(http.MethodPost, "/chat", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 with the failed payload when both providers are exhausted", func() {
			dispatcher.dispatchFn = func(context.Context, int64, string, string, []model.Message) (*model.Task, error) {
				return &model.Task{
					TaskID: "task_1",
					Status: model.TaskStatusFailed,
					Result: dispatch.ExhaustedMessage,
				}, dispatch.ErrExhausted
			}

			body, _ := json.Marshal(map[string]string{"prompt": "hi"})
			w := authedRequest(http.MethodPost, "/chat", body)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("failed"))
			Expect(resp["reply"]).To(Equal(dispatch.ExhaustedMessage))
		})

		It("requires authentication", func() {
			req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"prompt":"hi"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Analyze", func() {
		It("wraps the uploaded file in the analysis prompt", func() {
			var gotPrompt string
			dispatcher.dispatchFn = func(_ context.Context, _ int64, _, prompt string, _ []model.Message) (*model.Task, error) {
				gotPrompt = prompt
				return &model.Task{Status: model.TaskStatusCompleted}, nil
			}

			var buf bytes.Buffer
			mw := newMultipart(&buf, "server.log", "ERROR disk full\n", "deepseek")

			req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
			req.Header.Set("Content-Type", mw)
			req.Header.Set("Authorization", "Bearer token")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotPrompt).To(HavePrefix("请帮我分析以下日志或配置文件内容"))
			Expect(gotPrompt).To(ContainSubstring("ERROR disk full"))
		})

		It("truncates multibyte uploads to 4000 characters on a rune boundary", func() {
			var gotPrompt string
			dispatcher.dispatchFn = func(_ context.Context, _ int64, _, prompt string, _ []model.Message) (*model.Task, error) {
				gotPrompt = prompt
				return &model.Task{Status: model.TaskStatusCompleted}, nil
			}

			var buf bytes.Buffer
			mw := newMultipart(&buf, "app.log", strings.Repeat("错", 4100), "deepseek")

			req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
			req.Header.Set("Content-Type", mw)
			req.Header.Set("Authorization", "Bearer token")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			content := strings.TrimPrefix(gotPrompt, "请帮我分析以下日志或配置文件内容，给出关键信息、异常、优化建议等：\n\n")
			Expect(utf8.ValidString(content)).To(BeTrue())
			Expect([]rune(content)).To(HaveLen(4000))
		})

		It("rejects a request without a file", func() {
			body, _ := json.Marshal(map[string]string{"model": "deepseek"})
			w := authedRequest(http.MethodPost, "/analyze", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ChatStream", func() {
		It("does not require authentication", func() {
			body, _ := json.Marshal(map[string]string{"prompt": "hi"})
			req := httptest.NewRequest(http.MethodPost, "/chat/stream", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			// The registry has no providers here, so the handler gets past
			// session handling and fails on provider lookup instead.
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})
})
