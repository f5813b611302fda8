package api

import (
	"net/http"

	"imagestudio/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const currentClaimsContextKey = "current-claims"

// RequireAdmin 管理员令牌校验中间件
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.admin.Enabled() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Error: "Unauthorized",
				Code:  ErrCodeUnauthorized,
			})
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Error: "Unauthorized",
				Code:  ErrCodeUnauthorized,
			})
			return
		}

		claims, err := h.admin.Tokens().ParseToken(token)
		if err != nil {
			logrus.WithError(err).Warn("failed to parse jwt token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Error: "Unauthorized",
				Code:  ErrCodeSessionExpired,
			})
			return
		}

		if claims.Role != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Error: "Forbidden",
				Code:  ErrCodeForbidden,
			})
			return
		}

		c.Set(currentClaimsContextKey, claims)
		c.Next()
	}
}

// CurrentClaims 从上下文获取已校验的令牌声明
func CurrentClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(currentClaimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
