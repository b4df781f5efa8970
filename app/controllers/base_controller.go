package controllers

import (
	"net/http"

	"github.com/beego/beego/v2/server/web"
	"github.com/go-playground/validator/v10"
)

// validate 请求结构体校验器，controllers包内共享
var validate = validator.New()

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a standard success envelope.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, data)
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// validateRequest 校验请求结构体，失败时直接写400响应
func (c *BaseController) validateRequest(req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		c.JSONError(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
