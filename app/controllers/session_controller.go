package controllers

import (
	"net/http"
	"time"

	apperrors "github.com/aihub/textbook-rag/internal/errors"
	"github.com/aihub/textbook-rag/internal/logger"
	"github.com/aihub/textbook-rag/internal/services"
	"go.uber.org/zap"
)

// SessionController 会话管理接口
type SessionController struct {
	BaseController
	sessionService *services.SessionService
}

// NewSessionController 创建会话控制器
func NewSessionController(sessionService *services.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// New 显式创建会话
func (c *SessionController) New() {
	userID := c.GetString("user_id")

	session, err := c.sessionService.CreateSession(userID)
	if err != nil {
		logger.Error("failed to create session", zap.Error(err))
		c.JSONError(http.StatusInternalServerError, "failed to create session")
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"session_id": session.ID,
		"created_at": session.CreatedAt.Format(time.RFC3339),
	})
}

// History 按时间顺序返回会话历史
// 会话不存在时返回空列表而不是404
func (c *SessionController) History() {
	sessionID := c.Ctx.Input.Param(":session_id")

	messages, err := c.sessionService.History(sessionID)
	if err != nil {
		logger.Error("failed to load history", zap.String("session_id", sessionID), zap.Error(err))
		c.JSONError(apperrors.HTTPStatus(err), "failed to load history")
		return
	}

	items := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		items = append(items, map[string]interface{}{
			"role":          msg.Role,
			"content":       msg.Content,
			"timestamp":     msg.CreatedAt.Format(time.RFC3339),
			"selected_text": msg.SelectedText,
		})
	}

	c.JSONSuccess(map[string]interface{}{
		"session_id": sessionID,
		"messages":   items,
	})
}

// Delete 删除会话及其全部消息
func (c *SessionController) Delete() {
	sessionID := c.Ctx.Input.Param(":session_id")

	if err := c.sessionService.DeleteSession(sessionID); err != nil {
		logger.Error("failed to delete session", zap.String("session_id", sessionID), zap.Error(err))
		c.JSONError(http.StatusInternalServerError, "failed to delete session")
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"message": "Session deleted successfully",
	})
}
