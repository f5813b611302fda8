package api

import (
	"net/http"
	"strings"

	"imagestudio/internal/entity"
	"imagestudio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var freeTierFeatures = []string{"unlimited_templates", "offline_gallery", "no_watermark", "high_quality"}

type limitsPair struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

type userLimitsResponse struct {
	entity.UserLimits
	Limits   limitsPair `json:"limits"`
	Tier     string     `json:"tier"`
	Features []string   `json:"features"`
}

type resetLimitsRequest struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

func (h *HTTPHandler) limitsResponse(limits entity.UserLimits) userLimitsResponse {
	return userLimitsResponse{
		UserLimits: limits,
		Limits: limitsPair{
			Daily:   h.limitsService.DailyLimit(),
			Monthly: h.limitsService.MonthlyLimit(),
		},
		Tier:     "free",
		Features: freeTierFeatures,
	}
}

// GetUserLimits GET /api/user/limits?user_id=<uuid>，读取失败时返回默认额度
func (h *HTTPHandler) GetUserLimits(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if !service.IsValidUserID(userID) {
		BadRequest(c, ErrCodeValidation, "Invalid user ID")
		return
	}

	limits, err := h.limitsService.Report(c.Request.Context(), userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("user_limits_fallback")
		limits = h.limitsService.DefaultLimits()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.limitsResponse(limits),
	})
}

// ResetUserLimits POST /api/user/limits，仅管理员
func (h *HTTPHandler) ResetUserLimits(c *gin.Context) {
	var req resetLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		BadRequest(c, ErrCodeValidation, "User ID is required")
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))

	if err := h.limitsService.Reset(c.Request.Context(), req.UserID, req.Type); err != nil {
		WriteServiceError(c, err)
		return
	}

	fields := logrus.Fields{"user_id": req.UserID, "type": req.Type}
	if claims := CurrentClaims(c); claims != nil {
		fields["admin"] = claims.Subject
	}
	logrus.WithFields(fields).Info("admin_limits_reset")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User " + req.Type + " limits reset successfully",
	})
}
