package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/aihub/textbook-rag/internal/translation"
)

// TranslateController 内容翻译接口
type TranslateController struct {
	BaseController
	translationService *translation.Service
}

// NewTranslateController 创建翻译控制器
func NewTranslateController(service *translation.Service) *TranslateController {
	return &TranslateController{translationService: service}
}

type translateRequest struct {
	Text string `json:"text" validate:"required"`
}

// Post 翻译文本，失败时返回原文（尽力而为）
func (c *TranslateController) Post() {
	var req translateRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if !c.validateRequest(&req) {
		return
	}

	translated := c.translationService.Translate(c.Ctx.Request.Context(), req.Text)

	c.JSONSuccess(map[string]interface{}{
		"original_text":   req.Text,
		"translated_text": translated,
	})
}
