package main

import (
	"log"
	"strconv"

	"github.com/aihub/textbook-rag/app/bootstrap"
	"github.com/aihub/textbook-rag/app/router"
	"github.com/aihub/textbook-rag/internal/config"
	"github.com/aihub/textbook-rag/internal/logger"
	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	router.Init()

	cfg := config.GetAppConfig()
	web.BConfig.AppName = "Textbook RAG Service"
	web.BConfig.CopyRequestBody = true
	if p, err := strconv.Atoi(cfg.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	} else {
		web.BConfig.Listen.HTTPPort = 8000
	}

	logger.Info("🚀 Starting Textbook RAG Service", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
