// +build doc

package main

import (
	swaggerFiles "github.com/swaggo/files"
	gs "github.com/swaggo/gin-swagger"
)

func init() {
	swagHandler = gs.WrapHandler(swaggerFiles.Handler)
}
