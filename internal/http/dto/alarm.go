package dto

import (
	"time"

	"smartops.app/gateway/internal/model"
)

type CreateAlarmRuleRequest struct {
	RuleType   string `json:"rule_type" binding:"required,max=64"`
	Condition  string `json:"condition" binding:"omitempty,oneof=all failed completed"`
	NotifyType string `json:"notify_type" binding:"required,oneof=email webhook chatbot"`
	Target     string `json:"target" binding:"required"`
	Enabled    *bool  `json:"enabled"`
}

type UpdateAlarmRuleRequest struct {
	RuleType   string `json:"rule_type" binding:"required,max=64"`
	Condition  string `json:"condition" binding:"required,oneof=all failed completed"`
	NotifyType string `json:"notify_type" binding:"required,oneof=email webhook chatbot"`
	Target     string `json:"target" binding:"required"`
	Enabled    bool   `json:"enabled"`
}

type AlarmRuleResponse struct {
	ID         int64     `json:"id,string"`
	RuleType   string    `json:"rule_type"`
	Condition  string    `json:"condition"`
	NotifyType string    `json:"notify_type"`
	Target     string    `json:"target"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToAlarmRuleResponse(r *model.AlarmRule) *AlarmRuleResponse {
	return &AlarmRuleResponse{
		ID:         r.ID,
		RuleType:   r.RuleType,
		Condition:  r.Condition,
		NotifyType: string(r.NotifyType),
		Target:     r.Target,
		Enabled:    r.Enabled,
		CreatedAt:  r.CreatedAt,
	}
}

func ToAlarmRuleResponses(rules []model.AlarmRule) []AlarmRuleResponse {
	out := make([]AlarmRuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, *ToAlarmRuleResponse(&rules[i]))
	}
	return out
}
