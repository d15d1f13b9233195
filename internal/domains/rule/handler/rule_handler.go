package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pricing-engine/internal/domains/rule/model"
	"pricing-engine/internal/domains/rule/service"
	"pricing-engine/internal/shared/response"
)

// RuleHandler exposes the admin API for discount rules.
type RuleHandler struct {
	service service.ServiceInterface
}

// NewRuleHandler creates a handler instance
func NewRuleHandler(service service.ServiceInterface) *RuleHandler {
	return &RuleHandler{service: service}
}

// UpsertRule creates or updates a rule.
// POST /api/v1/admin/rules
func (h *RuleHandler) UpsertRule(c *gin.Context) {
	var req model.UpsertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rule, err := h.service.UpsertRule(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rule)
}

// ListRules returns a paginated, filterable rule listing with optional
// field projection.
// GET /api/v1/admin/rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	var filter model.ListRulesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	rules, total, err := h.service.ListRules(c.Request.Context(), &filter)
	if err != nil {
		response.FromError(c, err)
		return
	}

	projected := make([]map[string]interface{}, len(rules))
	for i, rule := range rules {
		projected[i] = rule.Project(filter.Fields)
	}

	response.SuccessWithMeta(c, http.StatusOK, projected, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// GetRule returns a single rule.
// GET /api/v1/admin/rules/:id
func (h *RuleHandler) GetRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid rule id")
		return
	}

	rule, err := h.service.GetRule(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rule)
}

// ToggleRuleActive flips the is_active flag.
// PATCH /api/v1/admin/rules/:id/active?value=true
func (h *RuleHandler) ToggleRuleActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid rule id")
		return
	}

	value, err := strconv.ParseBool(c.Query("value"))
	if err != nil {
		response.BadRequest(c, "Query parameter 'value' must be true or false")
		return
	}

	rule, err := h.service.ToggleRuleActive(c.Request.Context(), id, value)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rule)
}

// DeleteRule archives a rule.
// DELETE /api/v1/admin/rules/:id
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid rule id")
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
