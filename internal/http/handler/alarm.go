package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/dto"
	"smartops.app/gateway/internal/http/middleware"
	"smartops.app/gateway/internal/model"
	"smartops.app/gateway/internal/service"
	"smartops.app/gateway/internal/store"
)

type AlarmHandler struct {
	alarmService service.AlarmRuleService
}

func NewAlarmHandler(alarmService service.AlarmRuleService) *AlarmHandler {
	return &AlarmHandler{alarmService: alarmService}
}

func (h *AlarmHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	rules, err := h.alarmService.List(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list alarm rules", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alarm rules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alarms": dto.ToAlarmRuleResponses(rules)})
}

func (h *AlarmHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	var req dto.CreateAlarmRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := &model.AlarmRule{
		UserID:     user.ID,
		RuleType:   req.RuleType,
		Condition:  req.Condition,
		NotifyType: model.NotifyType(req.NotifyType),
		Target:     req.Target,
		Enabled:    enabled,
	}

	created, err := h.alarmService.Create(ctx, rule)
	if err != nil {
		if errors.Is(err, service.ErrUnknownNotifyType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notify type"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alarm rule"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToAlarmRuleResponse(created))
}

func (h *AlarmHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	ruleID, ok := parseRuleID(c)
	if !ok {
		return
	}

	var req dto.UpdateAlarmRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := &model.AlarmRule{
		ID:         ruleID,
		UserID:     user.ID,
		RuleType:   req.RuleType,
		Condition:  req.Condition,
		NotifyType: model.NotifyType(req.NotifyType),
		Target:     req.Target,
		Enabled:    req.Enabled,
	}

	if err := h.alarmService.Update(ctx, rule); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "alarm rule not found"})
		case errors.Is(err, service.ErrUnknownNotifyType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notify type"})
		default:
			slog.ErrorContext(ctx, "failed to update alarm rule", "error", err, "rule_id", ruleID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update alarm rule"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "alarm rule updated"})
}

func (h *AlarmHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	ruleID, ok := parseRuleID(c)
	if !ok {
		return
	}

	if err := h.alarmService.Delete(ctx, ruleID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alarm rule not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to delete alarm rule", "error", err, "rule_id", ruleID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete alarm rule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "alarm rule deleted"})
}

func parseRuleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return 0, false
	}
	return id, true
}
