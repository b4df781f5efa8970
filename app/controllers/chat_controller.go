package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/aihub/textbook-rag/internal/errors"
	"github.com/aihub/textbook-rag/internal/logger"
	"github.com/aihub/textbook-rag/internal/services"
	"go.uber.org/zap"
)

// ChatController 问答接口
type ChatController struct {
	BaseController
	chatService *services.ChatService
}

// NewChatController 创建问答控制器
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// chatRequest 问答请求体
type chatRequest struct {
	SessionID          string `json:"session_id"`
	UserID             string `json:"user_id"`
	Message            string `json:"message" validate:"required"`
	SelectedText       string `json:"selected_text"`
	SoftwareBackground string `json:"software_background" validate:"omitempty,oneof=beginner intermediate advanced"`
	HardwareBackground string `json:"hardware_background" validate:"omitempty,oneof=beginner intermediate advanced"`
	Language           string `json:"language" validate:"omitempty,oneof=en ur"`
}

// chatResponse 问答响应体
type chatResponse struct {
	SessionID string   `json:"session_id"`
	Message   string   `json:"message"`
	Sources   []string `json:"sources"`
	Timestamp string   `json:"timestamp"`
}

// Post 处理一次问答
func (c *ChatController) Post() {
	var req chatRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if !c.validateRequest(&req) {
		return
	}

	resp, err := c.chatService.Chat(c.Ctx.Request.Context(), &services.ChatRequest{
		SessionID:          req.SessionID,
		UserID:             req.UserID,
		Message:            req.Message,
		SelectedText:       req.SelectedText,
		SoftwareBackground: req.SoftwareBackground,
		HardwareBackground: req.HardwareBackground,
		Language:           req.Language,
	})
	if err != nil {
		logger.Error("chat request failed", zap.Error(err))
		c.JSONError(apperrors.HTTPStatus(err), err.Error())
		return
	}

	c.JSONSuccess(chatResponse{
		SessionID: resp.SessionID,
		Message:   resp.Message,
		Sources:   resp.Sources,
		Timestamp: resp.Timestamp.Format(time.RFC3339),
	})
}
