package api

import (
	"net/http"
	"strconv"
	"strings"

	"imagestudio/internal/entity"
	"imagestudio/internal/service"

	"github.com/gin-gonic/gin"
)

// ListTemplates GET /api/templates
func (h *HTTPHandler) ListTemplates(c *gin.Context) {
	query := service.TemplateListQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Featured: strings.EqualFold(strings.TrimSpace(c.Query("featured")), "true"),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			query.Limit = &v
		}
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			query.Offset = &v
		}
	}

	list := h.templateService.List(c.Request.Context(), query)

	category := query.Category
	if category == "" {
		category = "all"
	}
	limit, offset := 20, 0
	if query.Limit != nil {
		limit = *query.Limit
	}
	if query.Offset != nil {
		offset = *query.Offset
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"templates":  list.Templates,
			"total":      list.Total,
			"categories": list.Categories,
		},
		"meta": gin.H{
			"category": category,
			"featured": query.Featured,
			"limit":    limit,
			"offset":   offset,
		},
	})
}

// CreateTemplate POST /api/templates，仅管理员
func (h *HTTPHandler) CreateTemplate(c *gin.Context) {
	var req entity.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeValidation, "Validation error")
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), req)
	if err != nil {
		WriteServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    template,
		"message": "Template created successfully",
	})
}
