package alarm

import (
	"context"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"smartops.app/gateway/internal/model"
)

const notifyTimeout = 10 * time.Second

// WebhookNotifier posts the task outcome as JSON to the rule's target URL.
type WebhookNotifier struct {
	client *http.Client
}

func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{client: &http.Client{Timeout: notifyTimeout}}
}

func (n *WebhookNotifier) Notify(ctx context.Context, rule model.AlarmRule, task *model.Task) error {
	body, _ := sjson.Set("{}", "task_id", task.TaskID)
	body, _ = sjson.Set(body, "status", string(task.Status))
	body, _ = sjson.Set(body, "prompt", task.Prompt)
	body, _ = sjson.Set(body, "result", task.Result)
	body, _ = sjson.Set(body, "rule_type", rule.RuleType)
	body, _ = sjson.Set(body, "timestamp", task.Timestamp.Format(time.RFC3339))

	return n.post(ctx, rule.Target, body)
}

func (n *WebhookNotifier) post(ctx context.Context, url, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %s", resp.Status)
	}
	return nil
}

// ChatBotNotifier posts a text card to a chat-bot webhook (DingTalk/WeCom
// style payload).
type ChatBotNotifier struct {
	client *http.Client
}

func NewChatBotNotifier() *ChatBotNotifier {
	return &ChatBotNotifier{client: &http.Client{Timeout: notifyTimeout}}
}

func (n *ChatBotNotifier) Notify(ctx context.Context, rule model.AlarmRule, task *model.Task) error {
	content := fmt.Sprintf("【SmartOps告警】任务 %s 状态：%s\n%s", task.TaskID, task.Status, task.Result)

	body, _ := sjson.Set("{}", "msgtype", "text")
	body, _ = sjson.Set(body, "text.content", content)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rule.Target, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("building chat-bot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting chat-bot message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("chat-bot webhook returned status %s", resp.Status)
	}
	return nil
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// EmailNotifier sends the task outcome to the rule's target address over
// SMTP.
type EmailNotifier struct {
	cfg SMTPConfig
}

func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) Notify(_ context.Context, rule model.AlarmRule, task *model.Task) error {
	subject := fmt.Sprintf("SmartOps告警：任务 %s %s", task.TaskID, task.Status)
	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + rule.Target,
		"Subject: " + subject,
		"Content-Type: text/plain; charset=utf-8",
		"",
		task.Result,
	}, "\r\n")

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := n.cfg.Host + ":" + n.cfg.Port
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{rule.Target}, []byte(msg)); err != nil {
		return fmt.Errorf("sending alarm mail: %w", err)
	}
	return nil
}
