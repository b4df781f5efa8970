package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误
	ErrCodeInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodeBadRequest     ErrorCode = "BAD_REQUEST"

	// 业务逻辑错误
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"

	// 外部服务错误：embedding/生成/翻译/向量库不可用
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"

	// 摄取错误：单批上传失败（已上传的批次不回滚）
	ErrCodePartialIngest ErrorCode = "PARTIAL_INGEST_FAILURE"
)

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeSystem ErrorType = iota
	ErrorTypeBusiness
	ErrorTypeValidation
	ErrorTypeExternal
)

// AppError 应用错误结构体
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Type     ErrorType   `json:"type"`
	HTTPCode int         `json:"-"`
	Details  interface{} `json:"details,omitempty"`
	Cause    error       `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails 添加错误详情
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// 错误构造函数

// NewSessionNotFound 会话不存在
func NewSessionNotFound(sessionID string) *AppError {
	return &AppError{
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("session %s not found", sessionID),
		Type:     ErrorTypeBusiness,
		HTTPCode: http.StatusNotFound,
	}
}

// NewUserNotFound 用户不存在
func NewUserNotFound(userID string) *AppError {
	return &AppError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("user %s not found", userID),
		Type:     ErrorTypeBusiness,
		HTTPCode: http.StatusNotFound,
	}
}

// NewExternalService 外部服务不可用
func NewExternalService(service string, cause error) *AppError {
	return &AppError{
		Code:     ErrCodeExternalService,
		Message:  fmt.Sprintf("%s service unavailable", service),
		Type:     ErrorTypeExternal,
		HTTPCode: http.StatusBadGateway,
		Cause:    cause,
	}
}

// NewBadRequest 请求参数错误
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:     ErrCodeBadRequest,
		Message:  message,
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewInternalServer 服务内部错误
func NewInternalServer(message string, cause error) *AppError {
	return &AppError{
		Code:     ErrCodeInternalServer,
		Message:  message,
		Type:     ErrorTypeSystem,
		HTTPCode: http.StatusInternalServerError,
		Cause:    cause,
	}
}

// NewPartialIngest 摄取批次上传失败
func NewPartialIngest(batch int, cause error) *AppError {
	return &AppError{
		Code:     ErrCodePartialIngest,
		Message:  fmt.Sprintf("batch %d upload failed", batch),
		Type:     ErrorTypeExternal,
		HTTPCode: http.StatusBadGateway,
		Cause:    cause,
	}
}

// IsNotFound 判断是否为not-found类错误
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrCodeSessionNotFound || appErr.Code == ErrCodeUserNotFound
	}
	return false
}

// HTTPStatus 返回错误对应的HTTP状态码，未知错误按500处理
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}
