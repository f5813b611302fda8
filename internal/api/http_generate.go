package api

import (
	"net/http"
	"strconv"

	"imagestudio/internal/entity"
	"imagestudio/internal/preset"
	"imagestudio/internal/prompt"
	"imagestudio/internal/service"

	"github.com/gin-gonic/gin"
)

// Generate POST /api/generate
func (h *HTTPHandler) Generate(c *gin.Context) {
	c.Header("X-RateLimit-Limit-Daily", strconv.Itoa(h.cfg.DailyGenerationLimit))
	c.Header("X-RateLimit-Limit-Monthly", strconv.Itoa(h.cfg.MonthlyGenerationLimit))

	var req entity.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	data, err := h.generationService.Process(c.Request.Context(), req)
	if err != nil {
		WriteServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"message": "Image generated successfully!",
	})
}

type parameterDoc struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Options     any    `json:"options,omitempty"`
	Description string `json:"description"`
}

// GenerateDocs GET /api/generate 返回接口说明
func (h *HTTPHandler) GenerateDocs(c *gin.Context) {
	docs := gin.H{
		"endpoint":    "/api/generate",
		"method":      http.MethodPost,
		"description": "Generate AI images using Google Gemini API",
		"parameters": map[string]parameterDoc{
			"prompt": {
				Type:        "string",
				Required:    true,
				Description: "Text description of the image to generate (1-1000 characters)",
			},
			"negative_prompt": {
				Type:        "string",
				Description: "What to avoid in the image (max 500 characters)",
			},
			"style_template": {
				Type:        "string",
				Default:     prompt.DefaultStyle,
				Options:     prompt.StyleIDs(),
				Description: "Style preset applied to the prompt",
			},
			"aspect_ratio": {
				Type:        "string",
				Default:     preset.DefaultAspectRatio,
				Options:     preset.AspectRatioOptions(),
				Description: "Image aspect ratio",
			},
			"quality": {
				Type:        "string",
				Default:     preset.DefaultQuality,
				Options:     preset.QualityOptions(),
				Description: "Image quality level",
			},
			"seed": {
				Type:        "number",
				Description: "Random seed for reproducible results (0-999999999)",
			},
			"user_id": {
				Type:        "string",
				Description: "User UUID for rate limiting and history",
			},
			"api_key": {
				Type:        "string",
				Required:    true,
				Description: "Your Google Gemini API key",
			},
		},
		"limits": gin.H{
			"daily_limit":                h.cfg.DailyGenerationLimit,
			"monthly_limit":              h.cfg.MonthlyGenerationLimit,
			"max_prompt_length":          service.MaxPromptLength,
			"max_negative_prompt_length": service.MaxNegativePromptLength,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
	})
}
