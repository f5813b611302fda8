package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"imagestudio/internal/service"

	"github.com/gin-gonic/gin"
)

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var response APIError
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return response
}

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         int
		code           string
		message        string
		expectedStatus int
	}{
		{name: "BadRequest", status: http.StatusBadRequest, code: ErrCodeInvalidRequest, message: "无效的请求", expectedStatus: http.StatusBadRequest},
		{name: "NotFound", status: http.StatusNotFound, code: ErrCodeNotFound, message: "Image not found", expectedStatus: http.StatusNotFound},
		{name: "InternalError", status: http.StatusInternalServerError, code: ErrCodeInternalError, message: "服务器内部错误", expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponse(c, tt.status, tt.code, tt.message)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			response := decodeAPIError(t, w)
			if response.Success {
				t.Error("expected success=false")
			}
			if response.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, response.Code)
			}
			if response.Error != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, response.Error)
			}
		})
	}
}

func TestErrorResponseWithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "Validation error", map[string]string{"field": "prompt"})

	response := decodeAPIError(t, w)
	if response.Code != ErrCodeValidation {
		t.Errorf("expected code %s, got %s", ErrCodeValidation, response.Code)
	}
	if response.Details == nil {
		t.Error("expected details to be set")
	}
}

func TestWriteServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "校验错误", err: &service.Error{Kind: service.KindValidation, Message: "Validation error: Prompt is required"}, status: http.StatusBadRequest, code: ErrCodeValidation, message: "Validation error: Prompt is required"},
		{name: "内容违规", err: &service.Error{Kind: service.KindSafety, Message: "blocked"}, status: http.StatusForbidden, code: ErrCodeSafetyViolation, message: "blocked"},
		{name: "限流", err: &service.Error{Kind: service.KindRateLimit, Message: "slow down"}, status: http.StatusTooManyRequests, code: ErrCodeRateLimited, message: "slow down"},
		{name: "配额", err: &service.Error{Kind: service.KindQuota, Message: service.MsgQuotaExceeded}, status: http.StatusTooManyRequests, code: ErrCodeQuotaExceeded, message: service.MsgQuotaExceeded},
		{name: "密钥无效", err: &service.Error{Kind: service.KindAuth, Message: service.MsgInvalidAPIKey}, status: http.StatusUnauthorized, code: ErrCodeInvalidAPIKey, message: service.MsgInvalidAPIKey},
		{name: "上游失败", err: &service.Error{Kind: service.KindUpstream, Message: service.MsgInternal, Err: errors.New("secret detail")}, status: http.StatusInternalServerError, code: ErrCodeGenerationFailed, message: service.MsgInternal},
		{name: "持久化失败隐藏细节", err: &service.Error{Kind: service.KindPersistence, Message: "failed to get user limits", Err: errors.New("dial tcp")}, status: http.StatusInternalServerError, code: ErrCodeInternalError, message: service.MsgInternal},
		{name: "未分类错误", err: errors.New("boom"), status: http.StatusInternalServerError, code: ErrCodeInternalError, message: service.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/generate", nil)

			WriteServiceError(c, tt.err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			response := decodeAPIError(t, w)
			if response.Code != tt.code || response.Error != tt.message {
				t.Errorf("expected %s/%q, got %s/%q", tt.code, tt.message, response.Code, response.Error)
			}
		})
	}
}

func TestWriteServiceErrorRetryAfter(t *testing.T) {
	tests := []struct {
		name       string
		err        *service.Error
		retryAfter string
	}{
		{name: "整秒", err: &service.Error{Kind: service.KindRateLimit, Message: "slow down", RetryAfter: 90 * time.Second}, retryAfter: "90"},
		{name: "向上取整", err: &service.Error{Kind: service.KindRateLimit, Message: "slow down", RetryAfter: 1500 * time.Millisecond}, retryAfter: "2"},
		{name: "未知剩余时间", err: &service.Error{Kind: service.KindRateLimit, Message: "slow down"}, retryAfter: ""},
		{name: "非限流错误", err: &service.Error{Kind: service.KindQuota, Message: service.MsgQuotaExceeded, RetryAfter: time.Minute}, retryAfter: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/generate", nil)

			WriteServiceError(c, tt.err)

			if got := w.Header().Get("Retry-After"); got != tt.retryAfter {
				t.Errorf("expected Retry-After %q, got %q", tt.retryAfter, got)
			}
		})
	}
}

func TestShortcutFunctions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
	}{
		{name: "BadRequest", write: func(c *gin.Context) { BadRequest(c, ErrCodeInvalidRequest, "测试错误") }, status: http.StatusBadRequest},
		{name: "Unauthorized", write: func(c *gin.Context) { Unauthorized(c, "Unauthorized") }, status: http.StatusUnauthorized},
		{name: "NotFound", write: func(c *gin.Context) { NotFound(c, "资源不存在") }, status: http.StatusNotFound},
		{name: "InternalError", write: func(c *gin.Context) { InternalError(c, "服务器错误") }, status: http.StatusInternalServerError},
		{name: "ServiceUnavailable", write: func(c *gin.Context) { ServiceUnavailable(c, "服务不可用") }, status: http.StatusServiceUnavailable},
		{name: "InvalidPayload", write: InvalidPayload, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}
