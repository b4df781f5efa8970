package controllers

import (
	"time"

	"github.com/aihub/textbook-rag/internal/config"
	"github.com/aihub/textbook-rag/internal/database"
	"github.com/aihub/textbook-rag/internal/knowledge"
)

// lowPointThreshold 集合内点数低于该值时在健康检查里给出提示
const lowPointThreshold = 100

// RootController 根路径探活
type RootController struct {
	BaseController
}

// Index 简单健康响应
func (c *RootController) Index() {
	c.JSONSuccess(map[string]interface{}{
		"status":  "healthy",
		"service": "Physical AI Textbook RAG Chatbot",
		"version": "1.0.0",
	})
}

// HealthController 依赖服务健康检查
type HealthController struct {
	BaseController
	store knowledge.VectorStore
}

// NewHealthController 创建健康检查控制器
func NewHealthController(store knowledge.VectorStore) *HealthController {
	return &HealthController{store: store}
}

// Health 逐项检查向量库、数据库和LLM配置
func (c *HealthController) Health() {
	cfg := config.GetAppConfig()

	status := "healthy"
	servicesStatus := map[string]interface{}{}

	// 向量库
	vectorStatus := map[string]interface{}{"status": "healthy"}
	if c.store == nil || !c.store.Ready() {
		vectorStatus["status"] = "unhealthy"
		status = "degraded"
	} else {
		count, err := c.store.Count(c.Ctx.Request.Context(), cfg.VectorStore.Collection)
		if err != nil {
			vectorStatus["status"] = "unhealthy"
			vectorStatus["error"] = err.Error()
			status = "degraded"
		} else {
			vectorStatus["collection"] = cfg.VectorStore.Collection
			vectorStatus["points"] = count
			if count < lowPointThreshold {
				vectorStatus["warning"] = "Low point count"
			}
		}
	}
	servicesStatus["vector_store"] = vectorStatus

	// 数据库
	if err := database.HealthCheck(); err != nil {
		servicesStatus["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		status = "degraded"
	} else {
		servicesStatus["database"] = map[string]interface{}{"status": "healthy"}
	}

	// LLM只校验配置，不实际调用
	servicesStatus["llm"] = map[string]interface{}{
		"status": "configured",
		"model":  cfg.AI.LLMModel,
	}

	c.JSONSuccess(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  servicesStatus,
	})
}
