package api

import (
	"errors"
	"net/http"

	"imagestudio/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin POST /api/admin/login
func (h *HTTPHandler) AdminLogin(c *gin.Context) {
	if !h.admin.Enabled() {
		ServiceUnavailable(c, "Admin login is not configured")
		return
	}

	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	token, expiresAt, err := h.admin.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logrus.WithField("client_ip", c.ClientIP()).Warn("admin_login_failed")
			ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials")
			return
		}
		logrus.WithError(err).Error("failed to issue admin token")
		InternalError(c, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":      token,
			"expires_at": expiresAt,
		},
	})
}
