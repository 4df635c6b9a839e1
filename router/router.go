package router

import (
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/gin-gonic/gin"
)

var once sync.Once
var instance *gin.Engine

func init() {
	once.Do(func() {
		if !config.GetInstance().IsDevelopment() {
			gin.SetMode(gin.ReleaseMode)
		}
		instance = gin.New()
		addBasicRouter(instance)
		addApiRouter(instance)
	})
}

func GetInstance() *gin.Engine {
	return instance
}
