package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"smartops.app/gateway/internal/dispatch"
	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/model"
)

var _ = Describe("Dispatcher", func() {
	var (
		ctx      context.Context
		deepseek *mockProvider
		tongyi   *mockProvider
		tasks    *mockTaskStore
		alarms   *mockAlarmSink
		d        *dispatch.Dispatcher

		messages = []model.Message{{Role: model.RoleUser, Content: "磁盘满了"}}
	)

	newDispatcher := func(cfg dispatch.Config) *dispatch.Dispatcher {
		registry := llm.NewRegistry(deepseek, tongyi)
		return dispatch.NewDispatcher(dispatch.NewInvoker(registry), tasks, alarms, cfg)
	}

	BeforeEach(func() {
		ctx = context.Background()
		deepseek = &mockProvider{id: llm.ProviderDeepSeek}
		tongyi = &mockProvider{id: llm.ProviderTongyi}
		tasks = &mockTaskStore{}
		alarms = &mockAlarmSink{}
		d = newDispatcher(dispatch.Config{
			PrimaryTimeout:  time.Second,
			FallbackTimeout: time.Second,
		})
	})

	Context("when the primary provider answers", func() {
		It("completes with the primary's reply untouched", func() {
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "问题: disk full\n建议: clean logs\n", nil
			}

			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.TaskStatusCompleted))
			Expect(task.ProviderUsed).To(Equal(llm.ProviderDeepSeek))
			Expect(task.Result).To(Equal("问题: disk full\n建议: clean logs\n"))
		})

		It("classifies the reply into suggestions and structured fields", func() {
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "问题: disk full\n建议: clean logs\n", nil
			}

			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(task.Suggestions).To(Equal([]string{"建议: clean logs"}))
			Expect(task.Structured).To(HaveKeyWithValue("问题", "问题: disk full"))
			Expect(task.Structured).To(HaveKeyWithValue("建议", "建议: clean logs"))
		})

		It("persists the running record before calling any provider", func() {
			var order []string
			tasks.createFn = func(_ context.Context, task *model.Task) error {
				order = append(order, "create")
				Expect(task.Status).To(Equal(model.TaskStatusRunning))
				return nil
			}
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				order = append(order, "invoke")
				return "ok", nil
			}
			tasks.finalizeFn = func(_ context.Context, task *model.Task) error {
				order = append(order, "finalize")
				Expect(task.Status.Terminal()).To(BeTrue())
				return nil
			}

			_, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(Equal([]string{"create", "invoke", "finalize"}))
		})

		It("never calls the fallback", func() {
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "ok", nil
			}
			tongyi.invokeFn = func(context.Context, []model.Message) (string, error) {
				Fail("fallback must not be invoked")
				return "", nil
			}

			_, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("when the primary fails and the fallback answers", func() {
		BeforeEach(func() {
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "", errors.New("connection refused")
			}
			tongyi.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "建议: 重启服务", nil
			}
		})

		It("completes via the sibling with a disclosure prefix", func() {
			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.TaskStatusCompleted))
			Expect(task.ProviderUsed).To(Equal(llm.ProviderTongyi))
			Expect(task.Result).To(Equal("主通道超时，已切换到tongyi：\n建议: 重启服务"))
		})

		It("classifies the prefixed result text", func() {
			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(task.Suggestions).To(Equal([]string{"建议: 重启服务"}))
		})

		It("does not fire alarms", func() {
			fired := 0
			alarms.fireFn = func(context.Context, *model.Task) { fired++ }

			_, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(fired).To(BeZero())
		})
	})

	Context("when the primary exceeds its budget", func() {
		It("falls back after the deadline", func() {
			d = newDispatcher(dispatch.Config{
				PrimaryTimeout:  20 * time.Millisecond,
				FallbackTimeout: time.Second,
			})
			deepseek.invokeFn = func(ctx context.Context, _ []model.Message) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}
			tongyi.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "answer", nil
			}

			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(task.ProviderUsed).To(Equal(llm.ProviderTongyi))
		})
	})

	Context("when both providers fail", func() {
		var fired []*model.Task

		BeforeEach(func() {
			fired = nil
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "", errors.New("down")
			}
			tongyi.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "", errors.New("also down")
			}
			alarms.fireFn = func(_ context.Context, task *model.Task) {
				fired = append(fired, task)
			}
		})

		It("finalizes a failed task with the exhaustion message", func() {
			var finalized *model.Task
			tasks.finalizeFn = func(_ context.Context, task *model.Task) error {
				finalized = task
				return nil
			}

			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).To(MatchError(dispatch.ErrExhausted))
			Expect(task).NotTo(BeNil())
			Expect(task.Status).To(Equal(model.TaskStatusFailed))
			Expect(task.Result).To(Equal(dispatch.ExhaustedMessage))
			Expect(task.ProviderUsed).To(BeEmpty())
			Expect(finalized).To(BeIdenticalTo(task))
		})

		It("fires alarms exactly once, after the terminal record is durable", func() {
			finalizedFirst := false
			tasks.finalizeFn = func(context.Context, *model.Task) error {
				finalizedFirst = true
				return nil
			}
			alarms.fireFn = func(_ context.Context, task *model.Task) {
				Expect(finalizedFirst).To(BeTrue())
				fired = append(fired, task)
			}

			_, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).To(MatchError(dispatch.ErrExhausted))
			Expect(fired).To(HaveLen(1))
			Expect(fired[0].Status).To(Equal(model.TaskStatusFailed))
		})
	})

	Context("when persistence fails", func() {
		It("aborts before any provider call if the running record cannot be written", func() {
			tasks.createFn = func(context.Context, *model.Task) error {
				return errors.New("db down")
			}
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				Fail("provider must not be invoked")
				return "", nil
			}

			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).To(HaveOccurred())
			Expect(task).To(BeNil())
		})

		It("surfaces a finalize failure even for a successful reply", func() {
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "ok", nil
			}
			tasks.finalizeFn = func(context.Context, *model.Task) error {
				return errors.New("db down")
			}

			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).To(HaveOccurred())
			Expect(task).To(BeNil())
		})
	})

	Describe("task identity", func() {
		It("assigns handles in the task_ timestamp format", func() {
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "ok", nil
			}

			task, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(task.TaskID).To(HavePrefix("task_"))
			parts := strings.Split(task.TaskID, "_")
			Expect(parts).To(HaveLen(4))
			Expect(parts[1]).To(HaveLen(8))
			Expect(parts[2]).To(HaveLen(6))
			Expect(parts[3]).To(HaveLen(6))
		})

		It("creates an independent record per call and never mutates earlier ones", func() {
			var created []*model.Task
			tasks.createFn = func(_ context.Context, task *model.Task) error {
				created = append(created, task)
				return nil
			}
			deepseek.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "ok", nil
			}

			first, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)
			Expect(err).NotTo(HaveOccurred())
			snapshot := *first

			// Handles carry microsecond precision, so make sure the clock moves.
			time.Sleep(2 * time.Millisecond)

			second, err := d.Dispatch(ctx, 7, llm.ProviderDeepSeek, "磁盘满了", messages)
			Expect(err).NotTo(HaveOccurred())

			Expect(second.TaskID).NotTo(Equal(first.TaskID))
			Expect(created).To(HaveLen(2))
			Expect(created[0]).NotTo(BeIdenticalTo(created[1]))
			Expect(*first).To(Equal(snapshot))
		})

		It("records the caller-selected primary as the task model", func() {
			tongyiFirst := newDispatcher(dispatch.Config{
				PrimaryTimeout:  time.Second,
				FallbackTimeout: time.Second,
			})
			tongyi.invokeFn = func(context.Context, []model.Message) (string, error) {
				return "ok", nil
			}

			task, err := tongyiFirst.Dispatch(ctx, 7, llm.ProviderTongyi, "磁盘满了", messages)

			Expect(err).NotTo(HaveOccurred())
			Expect(task.Model).To(Equal(llm.ProviderTongyi))
			Expect(task.UserID).To(Equal(int64(7)))
		})
	})
})
