package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"imagestudio/internal/entity"
	"imagestudio/internal/preset"
	"imagestudio/internal/prompt"

	"github.com/google/uuid"
)

const (
	MaxPromptLength         = 1000
	MaxNegativePromptLength = 500
	MaxSeed                 = 999999999
)

// ApplyGenerationDefaults 填充可选字段的默认值
func ApplyGenerationDefaults(req *entity.GenerationRequest) {
	if req == nil {
		return
	}
	req.StyleTemplate = strings.TrimSpace(req.StyleTemplate)
	if req.StyleTemplate == "" {
		req.StyleTemplate = prompt.DefaultStyle
	}
	req.AspectRatio = strings.TrimSpace(req.AspectRatio)
	if req.AspectRatio == "" {
		req.AspectRatio = preset.DefaultAspectRatio
	}
	req.Quality = strings.TrimSpace(req.Quality)
	if req.Quality == "" {
		req.Quality = preset.DefaultQuality
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.APIKey = strings.TrimSpace(req.APIKey)
}

// ValidateGenerationRequest 校验所有字段，出错时返回合并后的 validation 错误
func ValidateGenerationRequest(req *entity.GenerationRequest) error {
	if req == nil {
		return newError(KindValidation, "Validation error: request body is required", nil)
	}

	var problems []string
	if msg := promptProblem(req.Prompt); msg != "" {
		problems = append(problems, msg)
	}
	if utf8.RuneCountInString(req.NegativePrompt) > MaxNegativePromptLength {
		problems = append(problems, fmt.Sprintf("Negative prompt is too long (max %d characters)", MaxNegativePromptLength))
	}
	if !preset.IsValidAspectRatio(req.AspectRatio) {
		problems = append(problems, fmt.Sprintf("Invalid aspect ratio, expected one of %s", strings.Join(preset.AspectRatioValues(), ", ")))
	}
	if !preset.IsValidQuality(req.Quality) {
		problems = append(problems, fmt.Sprintf("Invalid quality, expected one of %s", strings.Join(preset.QualityValues(), ", ")))
	}
	if req.Seed != nil && (*req.Seed < 0 || *req.Seed > MaxSeed) {
		problems = append(problems, fmt.Sprintf("Seed must be between 0 and %d", MaxSeed))
	}
	if req.UserID != "" && !IsValidUserID(req.UserID) {
		problems = append(problems, "Invalid user ID")
	}
	if strings.TrimSpace(req.APIKey) == "" {
		problems = append(problems, "API key is required")
	}

	if len(problems) > 0 {
		return newError(KindValidation, "Validation error: "+strings.Join(problems, ", "), nil)
	}
	return nil
}

// promptProblem 空白提示词视为空
func promptProblem(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Prompt is required"
	}
	if utf8.RuneCountInString(value) > MaxPromptLength {
		return fmt.Sprintf("Prompt is too long (max %d characters)", MaxPromptLength)
	}
	return ""
}

// IsValidUserID 用户 ID 必须是 UUID
func IsValidUserID(value string) bool {
	_, err := uuid.Parse(strings.TrimSpace(value))
	return err == nil
}
