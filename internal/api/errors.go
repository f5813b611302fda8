package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"imagestudio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 认证错误码
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeInvalidAPIKey      = "ERR_INVALID_API_KEY"

	// 生成相关错误码
	ErrCodeSafetyViolation  = "ERR_SAFETY_VIOLATION"
	ErrCodeRateLimited      = "ERR_RATE_LIMITED"
	ErrCodeQuotaExceeded    = "ERR_QUOTA_EXCEEDED"
	ErrCodeGenerationFailed = "ERR_GENERATION_FAILED"
)

// APIError 统一的错误响应结构
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Success: false,
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
}

// statusForKind 业务错误分类到 HTTP 状态码与错误码
func statusForKind(kind service.ErrorKind) (int, string) {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest, ErrCodeValidation
	case service.KindSafety:
		return http.StatusForbidden, ErrCodeSafetyViolation
	case service.KindRateLimit:
		return http.StatusTooManyRequests, ErrCodeRateLimited
	case service.KindQuota:
		return http.StatusTooManyRequests, ErrCodeQuotaExceeded
	case service.KindAuth:
		return http.StatusUnauthorized, ErrCodeInvalidAPIKey
	case service.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case service.KindUpstream:
		return http.StatusInternalServerError, ErrCodeGenerationFailed
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// WriteServiceError 写出业务错误，内部细节只记日志
func WriteServiceError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("unclassified_error")
		InternalError(c, service.MsgInternal)
		return
	}

	status, code := statusForKind(svcErr.Kind)
	message := svcErr.Message
	switch svcErr.Kind {
	case service.KindPersistence, service.KindInternal:
		logrus.WithError(svcErr.Err).WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"kind": string(svcErr.Kind),
		}).Error("request_failed")
		if svcErr.Kind == service.KindPersistence {
			message = service.MsgInternal
		}
	case service.KindRateLimit:
		if svcErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(svcErr.RetryAfter)))
		}
	}
	ErrorResponse(c, status, code, message)
}

// retryAfterSeconds 向上取整到秒
func retryAfterSeconds(d time.Duration) int {
	seconds := int(d / time.Second)
	if d%time.Second != 0 {
		seconds++
	}
	return seconds
}
