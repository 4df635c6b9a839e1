package router

import (
	"github.com/OMEGACYBER/zoxaa-aicompanion/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// addBasicRouter wires the global middleware chain and the operational
// endpoints that live outside the /api group.
func addBasicRouter(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS)
	engine.Use(middleware.Logger)
	engine.Use(middleware.Metrics)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
