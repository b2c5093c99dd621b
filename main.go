package main

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/router"
	"hyperv-facade/api/security"
	"hyperv-facade/app/cache"
	"hyperv-facade/app/logging"
	"hyperv-facade/config"
	"hyperv-facade/db"
	"hyperv-facade/helper"
	hCache "hyperv-facade/hyperv/cache"
	"hyperv-facade/hyperv/notify"
	"hyperv-facade/startup"
)

func init() {
	config.Setup()
	logging.Setup()
	security.Setup()
	helper.Setup()
	cache.Setup()
	hCache.Setup()
	notify.Setup()
	db.Setup()
}

// @title        Hyper-V Facade API
// @version      1.0
// @description  hyper-v host and failover cluster api

// @host      localhost:8829
// @BasePath  /api

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        token
func main() {
	defer logging.Sync()
	defer db.Close()
	defer notify.Close()
	gin.SetMode(config.G.Server.Mode)
	r := router.InitRouter()
	initSwagger(r)
	go startup.Run()
	_ = r.Run(fmt.Sprintf(":%d", config.G.Server.Port))
}

var swagHandler gin.HandlerFunc

func initSwagger(r *gin.Engine) {
	if swagHandler != nil {
		r.GET("/swagger/*any", swagHandler)
	}
}
