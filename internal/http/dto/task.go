package dto

import (
	"time"

	"smartops.app/gateway/internal/model"
)

type TaskResponse struct {
	TaskID       string            `json:"task_id"`
	Status       string            `json:"status"`
	Model        string            `json:"model"`
	ProviderUsed string            `json:"provider_used,omitempty"`
	Prompt       string            `json:"prompt"`
	Result       string            `json:"result,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`
	Structured   map[string]string `json:"structured,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

func ToTaskResponse(t *model.Task) *TaskResponse {
	return &TaskResponse{
		TaskID:       t.TaskID,
		Status:       string(t.Status),
		Model:        t.Model,
		ProviderUsed: t.ProviderUsed,
		Prompt:       t.Prompt,
		Result:       t.Result,
		Suggestions:  t.Suggestions,
		Structured:   t.Structured,
		Timestamp:    t.Timestamp,
	}
}

func ToTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, *ToTaskResponse(&tasks[i]))
	}
	return out
}
