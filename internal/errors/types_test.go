package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAppErrorWrapping 测试错误包装与解包
func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalService("qdrant", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "qdrant service unavailable")
	assert.Contains(t, err.Error(), "connection refused")

	var appErr *AppError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &appErr))
	assert.Equal(t, ErrCodeExternalService, appErr.Code)
}

// TestIsNotFound 测试not-found判定
func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewSessionNotFound("s-1")))
	assert.True(t, IsNotFound(NewUserNotFound("u-1")))
	assert.True(t, IsNotFound(fmt.Errorf("ctx: %w", NewUserNotFound("u-1"))))
	assert.False(t, IsNotFound(NewBadRequest("oops")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

// TestHTTPStatus 测试错误到HTTP状态码的映射
func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewSessionNotFound("s")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewBadRequest("bad")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(NewExternalService("llm", nil)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(NewPartialIngest(2, errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}
