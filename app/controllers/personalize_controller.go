package controllers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/aihub/textbook-rag/internal/errors"
	"github.com/aihub/textbook-rag/internal/personalization"
	"github.com/aihub/textbook-rag/internal/services"
)

// PersonalizeController 个性化内容接口
type PersonalizeController struct {
	BaseController
	profileService *services.ProfileService
}

// NewPersonalizeController 创建个性化控制器
func NewPersonalizeController(profileService *services.ProfileService) *PersonalizeController {
	return &PersonalizeController{profileService: profileService}
}

type introRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	ChapterTitle string `json:"chapter_title" validate:"required"`
}

// Intro 返回按用户背景定制的章节引导语
func (c *PersonalizeController) Intro() {
	var req introRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if !c.validateRequest(&req) {
		return
	}

	software, hardware, err := c.profileService.Backgrounds(req.UserID)
	if err != nil {
		c.JSONError(apperrors.HTTPStatus(err), err.Error())
		return
	}

	intro := personalization.GetChapterIntro(req.ChapterTitle, software, hardware)
	c.JSONSuccess(intro)
}
