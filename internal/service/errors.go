package service

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"imagestudio/internal/llm"
)

// ErrorKind 错误分类，决定 HTTP 状态码
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindSafety      ErrorKind = "safety"
	KindRateLimit   ErrorKind = "rate_limit"
	KindAuth        ErrorKind = "auth"
	KindQuota       ErrorKind = "quota"
	KindUpstream    ErrorKind = "upstream"
	KindPersistence ErrorKind = "persistence"
	KindNotFound    ErrorKind = "not_found"
	KindInternal    ErrorKind = "internal"
)

// 面向用户的错误文案
const (
	MsgQuotaExceeded   = "API quota exceeded. Please check your Gemini API key and try again."
	MsgSafetyViolation = "Prompt violates safety guidelines. Please modify your prompt and try again."
	MsgInvalidAPIKey   = "Invalid API key. Please check your Gemini API key and try again."
	MsgGenerateFailed  = "Failed to generate image. Please try again."
	MsgNoImageData     = "No image data received from API"
	MsgInternal        = "Internal server error. Please try again later."
	MsgUnsafePrompt    = "Prompt violates safety guidelines"
)

// Error 业务错误，Message 可直接返回给客户端，Err 只记录日志
type Error struct {
	Kind       ErrorKind
	Message    string
	Err        error
	RetryAfter time.Duration // 仅限流错误：距窗口重置的时间
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf 返回错误分类，非业务错误视为 internal
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// classifyUpstream 按错误文本归类外部生成失败
func classifyUpstream(err error) *Error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, llm.ErrMalformedResponse):
		return newError(KindUpstream, MsgGenerateFailed, err)
	case errors.Is(err, llm.ErrNoImageData):
		return newError(KindUpstream, MsgNoImageData, err)
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "quota"):
		return newError(KindQuota, MsgQuotaExceeded, err)
	case strings.Contains(message, "safety"):
		return newError(KindSafety, MsgSafetyViolation, err)
	case strings.Contains(message, "key"):
		return newError(KindAuth, MsgInvalidAPIKey, err)
	}

	// 文本无法归类时按 Gemini 返回的状态码
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return newError(KindQuota, MsgQuotaExceeded, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return newError(KindAuth, MsgInvalidAPIKey, err)
		}
	}
	return newError(KindUpstream, MsgInternal, err)
}
