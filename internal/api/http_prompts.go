package api

import (
	"net/http"

	"imagestudio/internal/moderation"
	"imagestudio/internal/prompt"

	"github.com/gin-gonic/gin"
)

type analyzePromptRequest struct {
	Prompt        string `json:"prompt" binding:"required"`
	StyleTemplate string `json:"style_template"`
}

// AnalyzePrompt POST /api/prompts/analyze，仅作提示，不拦截请求
func (h *HTTPHandler) AnalyzePrompt(c *gin.Context) {
	var req analyzePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeValidation, "Prompt is required")
		return
	}

	analysis := moderation.Analyze(req.Prompt)
	screened := moderation.Screen(req.Prompt)

	data := gin.H{
		"analysis": analysis,
		"blocked":  screened.Blocked,
	}
	if !screened.Blocked {
		style := req.StyleTemplate
		if style == "" {
			style = prompt.DefaultStyle
		}
		if enhanced, err := prompt.Enhance(req.Prompt, style); err == nil {
			data["enhanced_prompt"] = enhanced
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
