package router

import (
	"github.com/aihub/textbook-rag/app/bootstrap"
	"github.com/aihub/textbook-rag/app/controllers"
	"github.com/aihub/textbook-rag/internal/config"
	"github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Init registers all routes. Must be called after bootstrap.Init.
func Init() {
	app := bootstrap.GetApp()

	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", controllers.NewHealthController(app.VectorStore), "get:Health")

	chatController := controllers.NewChatController(app.ChatService)
	web.Router("/chat", chatController, "post:Post")

	sessionController := controllers.NewSessionController(app.SessionService)
	web.Router("/session/new", sessionController, "post:New")
	// 注意：具体路由必须在参数路由之前注册
	web.Router("/session/:session_id/history", sessionController, "get:History")
	web.Router("/session/:session_id", sessionController, "delete:Delete")

	translateController := controllers.NewTranslateController(app.TranslationService)
	web.Router("/translate", translateController, "post:Post")

	personalizeController := controllers.NewPersonalizeController(app.ProfileService)
	web.Router("/personalize/intro", personalizeController, "post:Intro")

	// Prometheus指标暴露
	if config.GetAppConfig().Prometheus.Enabled {
		web.Handler("/metrics", promhttp.Handler())
	}
}
