package dto

import (
	"smartops.app/gateway/internal/model"
)

type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type ChatContext struct {
	History []string `json:"history"`
}

type ChatRequest struct {
	Prompt   string        `json:"prompt"`
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages" binding:"omitempty,dive"`
	Context  *ChatContext  `json:"context"`
}

// BuildMessages assembles the conversation sent to the provider. Explicit
// messages win over the bare prompt; history lines are appended as extra user
// turns in their given order.
func (r *ChatRequest) BuildMessages() []model.Message {
	var messages []model.Message

	if len(r.Messages) > 0 {
		messages = make([]model.Message, 0, len(r.Messages))
		for _, m := range r.Messages {
			messages = append(messages, model.Message{Role: m.Role, Content: m.Content})
		}
	} else if r.Prompt != "" {
		messages = []model.Message{{Role: model.RoleUser, Content: r.Prompt}}
	}

	if r.Context != nil {
		for _, line := range r.Context.History {
			messages = append(messages, model.Message{Role: model.RoleUser, Content: line})
		}
	}

	return messages
}

// ToChatResponse flattens the finalized task into the reply payload.
// Structured labels are spread into top-level keys alongside the fixed
// fields.
func ToChatResponse(task *model.Task) map[string]any {
	resp := map[string]any{
		"reply":       task.Result,
		"task_id":     task.TaskID,
		"status":      string(task.Status),
		"suggestions": task.Suggestions,
	}
	if task.ProviderUsed != "" {
		resp["provider_used"] = task.ProviderUsed
	}
	for label, value := range task.Structured {
		resp[label] = value
	}
	return resp
}
